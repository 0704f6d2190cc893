package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
)

// PebbleStore is the durable OrderStore. Order rows are written with
// pebble.Sync; quote audit rows with NoSync since they are best-effort
// diagnostics.
type PebbleStore struct {
	db       *pebble.DB
	mu       sync.Mutex // serializes read-modify-write on order rows
	quoteSeq atomic.Uint64
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

func (s *PebbleStore) CreateOrder(o *core.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := s.db.Set(orderKey(o.OrderID), data, pebble.Sync); err != nil {
		return fmt.Errorf("%w: save order %s: %v", core.ErrPersistence, o.OrderID, err)
	}
	return nil
}

func (s *PebbleStore) GetOrder(orderID string) (*core.Order, error) {
	val, closer, err := s.db.Get(orderKey(orderID))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order %s: %v", core.ErrPersistence, orderID, err)
	}
	defer closer.Close()

	var o core.Order
	if err := json.Unmarshal(val, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", orderID, err)
	}
	return &o, nil
}

func (s *PebbleStore) UpdateOrderStatus(orderID string, status core.OrderStatus, upd Update) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
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
	applyUpdate(o, upd)

	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	if err := s.db.Set(orderKey(orderID), data, pebble.Sync); err != nil {
		return nil, fmt.Errorf("%w: update order %s: %v", core.ErrPersistence, orderID, err)
	}
	return o, nil
}

func (s *PebbleStore) SaveQuote(orderID string, q core.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	key := quoteKey(orderID, s.quoteSeq.Add(1), q.Venue)
	if err := s.db.Set(key, data, pebble.NoSync); err != nil {
		return fmt.Errorf("%w: save quote for %s: %v", core.ErrPersistence, orderID, err)
	}
	return nil
}

func (s *PebbleStore) ListQuotes(orderID string) ([]core.Quote, error) {
	prefix := quotePrefix(orderID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list quotes for %s: %v", core.ErrPersistence, orderID, err)
	}
	defer iter.Close()

	var quotes []core.Quote
	for iter.First(); iter.Valid(); iter.Next() {
		var q core.Quote
		if err := json.Unmarshal(iter.Value(), &q); err != nil {
			continue // skip invalid entries
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

var _ OrderStore = (*PebbleStore)(nil)
