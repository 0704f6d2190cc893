package core

import "time"

// OrderType classifies how an order should be executed.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeSniper OrderType = "sniper"
)

// ValidOrderType reports whether t is one of the supported order types.
func ValidOrderType(t OrderType) bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeSniper:
		return true
	}
	return false
}

// OrderStatus is a stage in the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusRouting   OrderStatus = "routing"
	StatusBuilding  OrderStatus = "building"
	StatusSubmitted OrderStatus = "submitted"
	StatusConfirmed OrderStatus = "confirmed"
	StatusFailed    OrderStatus = "failed"
)

// IsTerminal reports whether s is a final state. Terminal orders never
// transition again.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// CanTransition encodes the order state machine:
//
//	pending → routing → building → submitted → confirmed
//
// with failed reachable from any non-terminal state and pending re-entered
// on a retryable failure. No transition skips a stage.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case StatusRouting:
		return from == StatusPending
	case StatusBuilding:
		return from == StatusRouting
	case StatusSubmitted:
		return from == StatusBuilding
	case StatusConfirmed:
		return from == StatusSubmitted
	case StatusPending, StatusFailed:
		// Retry re-entry and terminal failure are reachable from any
		// in-flight state.
		return true
	}
	return false
}

// Order is a swap order. Created at pending by the submission boundary and
// mutated exclusively by the executor afterwards.
type Order struct {
	OrderID           string      `json:"order_id"`
	UserID            string      `json:"user_id"`
	OrderType         OrderType   `json:"order_type"`
	TokenIn           string      `json:"token_in"`
	TokenOut          string      `json:"token_out"`
	AmountIn          float64     `json:"amount_in"`
	AmountOut         *float64    `json:"amount_out,omitempty"`     // set on confirmed
	ExecutedPrice     *float64    `json:"executed_price,omitempty"` // set on confirmed
	SlippageTolerance float64     `json:"slippage_tolerance"`
	Status            OrderStatus `json:"status"`
	SelectedVenue     *string     `json:"selected_dex,omitempty"`
	TxHash            *string     `json:"tx_hash,omitempty"`
	ErrorMessage      *string     `json:"error_message,omitempty"`
	RetryCount        int         `json:"retry_count"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
}
