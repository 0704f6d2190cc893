package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hemanth5544/Order-Execution-Engine/params"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/engine"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/util"
)

var (
	ErrSchedulerClosed = errors.New("scheduler closed")
	ErrEmptyOrderID    = errors.New("job has no order id")
)

// Job carries the minimal order fields needed to execute without re-reading
// storage. Job identity equals the order id, which is what makes Submit
// idempotent.
type Job struct {
	OrderID           string         `json:"order_id"`
	UserID            string         `json:"user_id"`
	OrderType         core.OrderType `json:"order_type"`
	TokenIn           string         `json:"token_in"`
	TokenOut          string         `json:"token_out"`
	AmountIn          float64        `json:"amount_in"`
	SlippageTolerance float64        `json:"slippage_tolerance"`
}

// ExecuteFunc runs one execution attempt and reports the outcome.
type ExecuteFunc func(ctx context.Context, job Job) engine.Outcome

// Metrics is the flat counter snapshot polled by the boundary layer.
type Metrics struct {
	WaitingCount     int `json:"waiting_count"`
	ActiveCount      int `json:"active_count"`
	CompletedCount   int `json:"completed_count"`
	FailedCount      int `json:"failed_count"`
	ConcurrencyLimit int `json:"concurrency_limit"`
	RateLimit        int `json:"rate_limit"`
}

type jobState struct {
	job      Job
	attempts int
}

// Scheduler admits order-execution jobs, bounds concurrency, throttles
// admission to a rolling rate ceiling, and retries failed jobs with
// exponential backoff. One dispatcher goroutine feeds a bounded set of
// worker goroutines; waiting jobs queue FIFO.
type Scheduler struct {
	cfg    params.Queue
	exec   ExecuteFunc
	clock  util.Clock
	logger *zap.SugaredLogger

	mu      sync.Mutex
	cond    *sync.Cond
	waiting []*jobState
	jobs    map[string]*jobState // order id → live job (waiting, active or backing off)
	active  int
	closed  bool

	limiter   *rateLimiter
	slots     chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	completed *recordRing
	failed    *recordRing
}

// Retention caps match the original queue settings: completed jobs kept up
// to 1000 / 24h, failed jobs up to 5000 / 7d.
const (
	completedCap    = 1000
	completedMaxAge = 24 * time.Hour
	failedCap       = 5000
	failedMaxAge    = 7 * 24 * time.Hour
)

func NewScheduler(cfg params.Queue, exec ExecuteFunc, clock util.Clock, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if clock == nil {
		clock = util.RealClock{}
	}
	s := &Scheduler{
		cfg:       cfg,
		exec:      exec,
		clock:     clock,
		logger:    logger,
		jobs:      make(map[string]*jobState),
		limiter:   newRateLimiter(cfg.OrdersPerMinute, time.Minute, clock),
		slots:     make(chan struct{}, cfg.MaxConcurrentOrders),
		done:      make(chan struct{}),
		completed: newRecordRing(completedCap, completedMaxAge),
		failed:    newRecordRing(failedCap, failedMaxAge),
	}
	s.cond = sync.NewCond(&s.mu)

	go s.dispatch()
	return s
}

// Submit enqueues an execution job. Idempotent by order id: submitting an
// order that is already waiting, active or backing off returns the existing
// job id without creating a second execution.
func (s *Scheduler) Submit(job Job) (string, error) {
	if job.OrderID == "" {
		return "", ErrEmptyOrderID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSchedulerClosed
	}
	if _, ok := s.jobs[job.OrderID]; ok {
		s.logger.Debugw("job_already_queued", "order_id", job.OrderID)
		return job.OrderID, nil
	}

	js := &jobState{job: job}
	s.jobs[job.OrderID] = js
	s.waiting = append(s.waiting, js)
	s.cond.Signal()

	s.logger.Infow("job_submitted", "order_id", job.OrderID, "waiting", len(s.waiting))
	return job.OrderID, nil
}

// Metrics returns a point-in-time counter snapshot.
func (s *Scheduler) Metrics() Metrics {
	s.mu.Lock()
	waiting, active := len(s.waiting), s.active
	s.mu.Unlock()

	return Metrics{
		WaitingCount:     waiting,
		ActiveCount:      active,
		CompletedCount:   s.completed.count(),
		FailedCount:      s.failed.count(),
		ConcurrencyLimit: s.cfg.MaxConcurrentOrders,
		RateLimit:        s.cfg.OrdersPerMinute,
	}
}

// CompletedJobs returns the retained completed-job records.
func (s *Scheduler) CompletedJobs() []Record { return s.completed.snapshot() }

// FailedJobs returns the retained failed-job records.
func (s *Scheduler) FailedJobs() []Record { return s.failed.snapshot() }

// Shutdown stops admissions and waits for in-flight jobs to drain, bounded
// by ctx. Jobs parked in backoff are dropped; waiting jobs stay unexecuted.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.cond.Broadcast()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.logger.Infow("scheduler_drained")
		return nil
	case <-ctx.Done():
		s.logger.Warnw("scheduler_drain_timeout", "err", ctx.Err())
		return ctx.Err()
	}
}

// dispatch pops waiting jobs FIFO, waits on the rate limiter and a worker
// slot, then hands the job to a worker goroutine.
func (s *Scheduler) dispatch() {
	for {
		s.mu.Lock()
		for len(s.waiting) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		js := s.waiting[0]
		s.waiting = s.waiting[1:]
		s.mu.Unlock()

		if err := s.limiter.wait(s.done); err != nil {
			return
		}

		select {
		case s.slots <- struct{}{}:
		case <-s.done:
			return
		}

		s.mu.Lock()
		s.active++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.runJob(js)
	}
}

func (s *Scheduler) runJob(js *jobState) {
	defer s.wg.Done()
	defer func() { <-s.slots }()

	js.attempts++
	s.logger.Infow("job_started", "order_id", js.job.OrderID, "attempt", js.attempts)

	// No mid-execution cancellation: once started, an attempt runs to its
	// outcome even during shutdown.
	outcome := s.exec(context.Background(), js.job)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	switch outcome {
	case engine.OutcomeRetry:
		if js.attempts < s.cfg.MaxRetries {
			s.scheduleRetry(js)
			return
		}
		// Executor asked for a retry but the attempt budget is spent.
		// Overlapping safety net: record the job as failed either way.
		s.finish(js, outcome)
	default:
		s.finish(js, outcome)
	}
}

// scheduleRetry re-admits the job after exponential backoff
// (base * 2^(attempt-1)).
func (s *Scheduler) scheduleRetry(js *jobState) {
	delay := s.cfg.BackoffBase << (js.attempts - 1)
	s.logger.Infow("job_retry_scheduled", "order_id", js.job.OrderID, "attempt", js.attempts, "delay", delay)

	go func() {
		select {
		case <-s.done:
			s.mu.Lock()
			delete(s.jobs, js.job.OrderID)
			s.mu.Unlock()
		case <-s.clock.After(delay):
			s.mu.Lock()
			if s.closed {
				delete(s.jobs, js.job.OrderID)
				s.mu.Unlock()
				return
			}
			s.waiting = append(s.waiting, js)
			s.cond.Signal()
			s.mu.Unlock()
		}
	}()
}

func (s *Scheduler) finish(js *jobState, outcome engine.Outcome) {
	s.mu.Lock()
	delete(s.jobs, js.job.OrderID)
	s.mu.Unlock()

	rec := Record{
		Job:        js.job,
		Outcome:    outcome,
		Result:     outcome.String(),
		Attempts:   js.attempts,
		FinishedAt: time.Now().UTC(),
	}

	if outcome == engine.OutcomeConfirmed {
		s.completed.add(rec)
		s.logger.Infow("job_completed", "order_id", js.job.OrderID, "attempts", js.attempts)
		return
	}
	s.failed.add(rec)
	s.logger.Warnw("job_failed", "order_id", js.job.OrderID, "outcome", outcome.String(), "attempts", js.attempts)
}
