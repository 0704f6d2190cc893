package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
)

// MemStore is an in-memory OrderStore with the same contract as PebbleStore.
// Used by tests and available for ephemeral deployments.
type MemStore struct {
	mu     sync.Mutex
	orders map[string]core.Order
	quotes map[string][]core.Quote
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders: make(map[string]core.Order),
		quotes: make(map[string][]core.Quote),
	}
}

func (s *MemStore) CreateOrder(o *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = *o
	return nil
}

func (s *MemStore) GetOrder(orderID string) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *MemStore) UpdateOrderStatus(orderID string, status core.OrderStatus, upd Update) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("update order %s: %w", orderID, core.ErrOrderNotFound)
	}
	if !core.CanTransition(o.Status, status) {
		return nil, fmt.Errorf("update order %s: %w: %s -> %s", orderID, core.ErrInvalidTransition, o.Status, status)
	}

	now := time.Now().UTC()
	o.Status = status
	o.UpdatedAt = now
	if status.IsTerminal() {
		o.CompletedAt = &now
	}
	applyUpdate(&o, upd)

	s.orders[orderID] = o
	return &o, nil
}

func (s *MemStore) SaveQuote(orderID string, q core.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[orderID] = append(s.quotes[orderID], q)
	return nil
}

func (s *MemStore) ListQuotes(orderID string) ([]core.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Quote, len(s.quotes[orderID]))
	copy(out, s.quotes[orderID])
	return out, nil
}

func (s *MemStore) Close() error { return nil }

var _ OrderStore = (*MemStore)(nil)
