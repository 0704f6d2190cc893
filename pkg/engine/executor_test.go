package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/broadcast"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/dex"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/storage"
)

// stubVenue is a deterministic adapter for executor tests.
type stubVenue struct {
	name     string
	out      float64
	quoteErr error
	execErr  error
	fill     core.Fill
}

func (s *stubVenue) Name() string { return s.name }

func (s *stubVenue) Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64) (core.Quote, error) {
	if s.quoteErr != nil {
		return core.Quote{}, s.quoteErr
	}
	return core.Quote{Venue: s.name, Price: s.out / amountIn, Fee: 0.003, EstimatedAmountOut: s.out}, nil
}

func (s *stubVenue) Execute(ctx context.Context, tokenIn, tokenOut string, amountIn, minAmountOut float64) (core.Fill, error) {
	if s.execErr != nil {
		return core.Fill{}, s.execErr
	}
	return s.fill, nil
}

// recordingSub collects everything broadcast for assertions.
type recordingSub struct {
	mu  sync.Mutex
	got []broadcast.StatusUpdate
}

func (r *recordingSub) Send(u broadcast.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, u)
	return nil
}

func (r *recordingSub) statuses() []core.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.OrderStatus, len(r.got))
	for i, u := range r.got {
		out[i] = u.Status
	}
	return out
}

func (r *recordingSub) last() broadcast.StatusUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[len(r.got)-1]
}

func setup(t *testing.T, adapters ...dex.Adapter) (*Executor, storage.OrderStore, *broadcast.Hub) {
	t.Helper()
	store := storage.NewMemStore()
	hub := broadcast.NewHub(nil)
	router := dex.NewRouter(adapters, nil)
	return NewExecutor(store, router, hub, 3, nil), store, hub
}

func createOrder(t *testing.T, store storage.OrderStore, id string) {
	t.Helper()
	err := store.CreateOrder(&core.Order{
		OrderID:           id,
		UserID:            "u1",
		OrderType:         core.OrderTypeMarket,
		TokenIn:           "SOL",
		TokenOut:          "USDC",
		AmountIn:          100,
		SlippageTolerance: 0.01,
		Status:            core.StatusPending,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
}

func TestExecuteOrderHappyPath(t *testing.T) {
	winner := &stubVenue{name: "meteora", out: 101, fill: core.Fill{TxHash: "ff00", ExecutedPrice: 0.9999, AmountOut: 99.99}}
	loser := &stubVenue{name: "raydium", out: 99}
	exec, store, hub := setup(t, loser, winner)

	createOrder(t, store, "o1")
	sub := &recordingSub{}
	hub.Subscribe("o1", sub)

	outcome := exec.ExecuteOrder(context.Background(), "o1")
	if outcome != OutcomeConfirmed {
		t.Fatalf("outcome = %s, want confirmed", outcome)
	}

	order, _ := store.GetOrder("o1")
	if order.Status != core.StatusConfirmed {
		t.Errorf("status = %s", order.Status)
	}
	if order.SelectedVenue == nil || *order.SelectedVenue != "meteora" {
		t.Error("winning venue not recorded")
	}
	if order.TxHash == nil || *order.TxHash != "ff00" {
		t.Error("tx hash not recorded")
	}
	if order.ExecutedPrice == nil || order.AmountOut == nil {
		t.Error("execution fields must be set together on confirmed")
	}
	if order.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if order.RetryCount != 0 {
		t.Errorf("retry_count = %d, want 0", order.RetryCount)
	}

	// both quotes persisted for audit
	quotes, _ := store.ListQuotes("o1")
	if len(quotes) != 2 {
		t.Errorf("saved %d quotes, want 2", len(quotes))
	}

	// status sequence never skips a stage, and confirms exactly once
	statuses := sub.statuses()
	want := []core.OrderStatus{
		core.StatusRouting, core.StatusRouting, // transition + routing decision
		core.StatusBuilding, core.StatusSubmitted, core.StatusConfirmed,
	}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	confirmedCount := 0
	for i, s := range statuses {
		if s != want[i] {
			t.Errorf("statuses[%d] = %s, want %s", i, s, want[i])
		}
		if s == core.StatusConfirmed {
			confirmedCount++
		}
	}
	if confirmedCount != 1 {
		t.Errorf("confirmed broadcast %d times, want exactly 1", confirmedCount)
	}
	if sub.last().TxHash != "ff00" {
		t.Error("final broadcast missing tx hash")
	}
}

func TestExecuteOrderRetryableFailure(t *testing.T) {
	bad := errors.New("venue rpc down")
	a := &stubVenue{name: "raydium", quoteErr: bad}
	b := &stubVenue{name: "meteora", quoteErr: bad}
	exec, store, hub := setup(t, a, b)

	createOrder(t, store, "o2")
	sub := &recordingSub{}
	hub.Subscribe("o2", sub)

	outcome := exec.ExecuteOrder(context.Background(), "o2")
	if outcome != OutcomeRetry {
		t.Fatalf("outcome = %s, want retry", outcome)
	}

	order, _ := store.GetOrder("o2")
	if order.Status != core.StatusPending {
		t.Errorf("status = %s, want pending re-entry", order.Status)
	}
	if order.RetryCount != 1 {
		t.Errorf("retry_count = %d, want 1", order.RetryCount)
	}
	if order.ErrorMessage == nil || *order.ErrorMessage == "" {
		t.Error("error message not recorded")
	}

	last := sub.last()
	if last.Status != core.StatusPending {
		t.Errorf("last broadcast status = %s", last.Status)
	}
	if last.Message != "Retrying order (attempt 2/3)" {
		t.Errorf("retry message = %q", last.Message)
	}
}

func TestExecuteOrderRetryCeiling(t *testing.T) {
	bad := errors.New("venue rpc down")
	a := &stubVenue{name: "raydium", quoteErr: bad}
	b := &stubVenue{name: "meteora", quoteErr: bad}
	exec, store, hub := setup(t, a, b)

	createOrder(t, store, "o3")
	sub := &recordingSub{}
	hub.Subscribe("o3", sub)

	// three consecutive failing attempts exhaust the default ceiling of 3
	outcomes := []Outcome{
		exec.ExecuteOrder(context.Background(), "o3"),
		exec.ExecuteOrder(context.Background(), "o3"),
		exec.ExecuteOrder(context.Background(), "o3"),
	}
	if outcomes[0] != OutcomeRetry || outcomes[1] != OutcomeRetry {
		t.Fatalf("first two outcomes = %v, want retries", outcomes[:2])
	}
	if outcomes[2] != OutcomeFailed {
		t.Fatalf("third outcome = %s, want failed", outcomes[2])
	}

	order, _ := store.GetOrder("o3")
	if order.Status != core.StatusFailed {
		t.Errorf("status = %s, want failed", order.Status)
	}
	if order.RetryCount != 3 {
		t.Errorf("retry_count = %d, want 3", order.RetryCount)
	}
	if order.CompletedAt == nil {
		t.Error("completed_at not set on failed")
	}

	last := sub.last()
	if last.Status != core.StatusFailed {
		t.Errorf("final broadcast status = %s", last.Status)
	}
	if last.Error == "" {
		t.Error("failed broadcast must carry a non-empty error")
	}
}

func TestExecuteOrderExecuteStepFailure(t *testing.T) {
	bad := errors.New("swap reverted")
	winner := &stubVenue{name: "meteora", out: 101, execErr: bad}
	loser := &stubVenue{name: "raydium", out: 99}
	exec, store, _ := setup(t, loser, winner)

	createOrder(t, store, "o4")

	outcome := exec.ExecuteOrder(context.Background(), "o4")
	if outcome != OutcomeRetry {
		t.Fatalf("outcome = %s, want retry", outcome)
	}

	order, _ := store.GetOrder("o4")
	if order.Status != core.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.RetryCount != 1 {
		t.Errorf("retry_count = %d", order.RetryCount)
	}
}

func TestExecuteOrderNotFound(t *testing.T) {
	a := &stubVenue{name: "raydium", out: 99}
	b := &stubVenue{name: "meteora", out: 101}
	exec, _, _ := setup(t, a, b)

	if outcome := exec.ExecuteOrder(context.Background(), "ghost"); outcome != OutcomeNotFound {
		t.Fatalf("outcome = %s, want not_found", outcome)
	}
}

func TestRetryCountNeverDecreases(t *testing.T) {
	bad := errors.New("flaky venue")
	a := &stubVenue{name: "raydium", quoteErr: bad}
	b := &stubVenue{name: "meteora", quoteErr: bad}
	exec, store, _ := setup(t, a, b)

	createOrder(t, store, "o5")

	prev := 0
	for i := 0; i < 3; i++ {
		exec.ExecuteOrder(context.Background(), "o5")
		order, _ := store.GetOrder("o5")
		if order.RetryCount < prev {
			t.Fatalf("retry_count decreased: %d -> %d", prev, order.RetryCount)
		}
		prev = order.RetryCount
	}
	if prev != 3 {
		t.Errorf("final retry_count = %d, want 3", prev)
	}
}
