package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
)

// StatusUpdate is the message pushed to subscribers on every order
// transition.
type StatusUpdate struct {
	OrderID   string           `json:"order_id"`
	Status    core.OrderStatus `json:"status"`
	Timestamp string           `json:"timestamp"`
	Message   string           `json:"message,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
	TxHash    string           `json:"tx_hash,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Subscriber is a live observer of one order. Send must not block; a
// subscriber that returns an error is pruned and never contacted again.
type Subscriber interface {
	Send(u StatusUpdate) error
}

// orderEntry holds the subscriber set for one order. Mutations are
// serialized per entry so publishes for unrelated orders never contend.
// dead is set, under mu, when the entry is removed from the hub map; a
// Subscribe that raced the removal sees it and retries on a fresh entry.
type orderEntry struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
	dead bool
}

// Hub fans status updates out to per-order subscriber sets. Publish is
// fire-and-forget: the executor never depends on delivery.
type Hub struct {
	entries sync.Map // orderID → *orderEntry
	logger  *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{logger: logger}
}

// Subscribe registers sub for updates on orderID.
func (h *Hub) Subscribe(orderID string, sub Subscriber) {
	for {
		v, _ := h.entries.LoadOrStore(orderID, &orderEntry{subs: make(map[Subscriber]struct{})})
		e := v.(*orderEntry)
		e.mu.Lock()
		if e.dead {
			// Lost the race against the last unsubscribe; the entry is
			// already out of the map.
			e.mu.Unlock()
			continue
		}
		e.subs[sub] = struct{}{}
		n := len(e.subs)
		e.mu.Unlock()
		h.logger.Debugw("subscriber_registered", "order_id", orderID, "total", n)
		return
	}
}

// Unsubscribe detaches sub from orderID. Removing the last subscriber drops
// the whole entry.
func (h *Hub) Unsubscribe(orderID string, sub Subscriber) {
	v, ok := h.entries.Load(orderID)
	if !ok {
		return
	}
	e := v.(*orderEntry)
	e.mu.Lock()
	delete(e.subs, sub)
	if len(e.subs) == 0 {
		e.dead = true
		h.entries.Delete(orderID)
	}
	e.mu.Unlock()
	h.logger.Debugw("subscriber_removed", "order_id", orderID)
}

// PublishOpts carries the optional parts of a status update.
type PublishOpts struct {
	Message string
	Data    map[string]any
	TxHash  string
	Error   string
}

// Publish pushes a transition to every live subscriber of the order.
// Delivery is at-most-once per subscriber; erroring subscribers are pruned.
// With zero subscribers this is a silent no-op.
func (h *Hub) Publish(orderID string, status core.OrderStatus, opts PublishOpts) {
	v, ok := h.entries.Load(orderID)
	if !ok {
		h.logger.Debugw("no_subscribers", "order_id", orderID, "status", status)
		return
	}

	msg := StatusUpdate{
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   opts.Message,
		Data:      opts.Data,
		TxHash:    opts.TxHash,
		Error:     opts.Error,
	}

	e := v.(*orderEntry)
	e.mu.Lock()
	for sub := range e.subs {
		if err := sub.Send(msg); err != nil {
			// Dead subscriber. Broadcast failures never propagate.
			h.logger.Debugw("subscriber_pruned", "order_id", orderID, "err", err)
			delete(e.subs, sub)
		}
	}
	n := len(e.subs)
	if n == 0 {
		e.dead = true
		h.entries.Delete(orderID)
	}
	e.mu.Unlock()

	h.logger.Infow("status_update_sent", "order_id", orderID, "status", status, "subscribers", n)
}

// ActiveCount returns the number of live subscribers for one order.
func (h *Hub) ActiveCount(orderID string) int {
	v, ok := h.entries.Load(orderID)
	if !ok {
		return 0
	}
	e := v.(*orderEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// ActiveCountAll returns the total subscriber count across all orders.
func (h *Hub) ActiveCountAll() int {
	total := 0
	h.entries.Range(func(_, v any) bool {
		e := v.(*orderEntry)
		e.mu.Lock()
		total += len(e.subs)
		e.mu.Unlock()
		return true
	})
	return total
}
