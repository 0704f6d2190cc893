package queue

import (
	"sync"
	"time"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/util"
)

// rateLimiter enforces a rolling-window admission ceiling. Callers wait for
// a slot; admissions are never rejected.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	clock  util.Clock
}

func newRateLimiter(limit int, window time.Duration, clock util.Clock) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, clock: clock}
}

// wait blocks until an admission slot is free within the rolling window, or
// done closes.
func (l *rateLimiter) wait(done <-chan struct{}) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		i := 0
		for i < len(l.stamps) && now.Sub(l.stamps[i]) >= l.window {
			i++
		}
		l.stamps = l.stamps[i:]
		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		// Oldest admission ages out first.
		waitFor := l.window - now.Sub(l.stamps[0])
		l.mu.Unlock()

		select {
		case <-done:
			return ErrSchedulerClosed
		case <-l.clock.After(waitFor):
		}
	}
}
