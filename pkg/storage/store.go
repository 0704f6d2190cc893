package storage

import "github.com/hemanth5544/Order-Execution-Engine/pkg/core"

// Update carries the optional order fields written alongside a status change.
// Nil fields are left untouched.
type Update struct {
	SelectedVenue *string
	TxHash        *string
	ExecutedPrice *float64
	AmountOut     *float64
	ErrorMessage  *string
	RetryCount    *int
}

// OrderStore is the narrow persistence contract the execution pipeline
// consumes. Implementations must provide per-order atomic read-modify-write
// semantics for UpdateOrderStatus; the pipeline relies on the scheduler's
// at-most-one-active-job-per-order guarantee for everything else.
type OrderStore interface {
	// CreateOrder persists a new order row.
	CreateOrder(o *core.Order) error
	// GetOrder returns the order, or (nil, nil) when absent.
	GetOrder(orderID string) (*core.Order, error)
	// UpdateOrderStatus applies a status change plus any partial fields,
	// stamps updated_at, and stamps completed_at when the new status is
	// terminal. Transitions the state machine forbids are rejected with
	// core.ErrInvalidTransition. Returns the updated row.
	UpdateOrderStatus(orderID string, status core.OrderStatus, upd Update) (*core.Order, error)
	// SaveQuote appends a venue quote to the order's audit trail.
	SaveQuote(orderID string, q core.Quote) error
	// ListQuotes returns the order's audit trail in insertion order.
	ListQuotes(orderID string) ([]core.Quote, error)
	Close() error
}

func applyUpdate(o *core.Order, upd Update) {
	if upd.SelectedVenue != nil {
		o.SelectedVenue = upd.SelectedVenue
	}
	if upd.TxHash != nil {
		o.TxHash = upd.TxHash
	}
	if upd.ExecutedPrice != nil {
		o.ExecutedPrice = upd.ExecutedPrice
	}
	if upd.AmountOut != nil {
		o.AmountOut = upd.AmountOut
	}
	if upd.ErrorMessage != nil {
		o.ErrorMessage = upd.ErrorMessage
	}
	if upd.RetryCount != nil {
		o.RetryCount = *upd.RetryCount
	}
}
