package api

import (
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
)

// CreateOrderRequest is the submission payload.
type CreateOrderRequest struct {
	OrderType         string   `json:"orderType"`
	TokenIn           string   `json:"tokenIn"`
	TokenOut          string   `json:"tokenOut"`
	AmountIn          float64  `json:"amountIn"`
	SlippageTolerance *float64 `json:"slippageTolerance,omitempty"`
	UserID            string   `json:"userId"`
}

// Validate checks the closed order-type set, token symbols, amount, slippage
// bounds and user id. Returns the slippage tolerance to use (default 0.01).
func (r CreateOrderRequest) Validate() (float64, error) {
	if !core.ValidOrderType(core.OrderType(r.OrderType)) {
		return 0, &core.ValidationError{Field: "orderType", Reason: "must be one of market, limit, sniper"}
	}
	if r.TokenIn == "" {
		return 0, &core.ValidationError{Field: "tokenIn", Reason: "must not be empty"}
	}
	if r.TokenOut == "" {
		return 0, &core.ValidationError{Field: "tokenOut", Reason: "must not be empty"}
	}
	if r.AmountIn <= 0 {
		return 0, &core.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}
	if r.UserID == "" {
		return 0, &core.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	slippage := 0.01
	if r.SlippageTolerance != nil {
		slippage = *r.SlippageTolerance
		if slippage < 0 || slippage > 1 {
			return 0, &core.ValidationError{Field: "slippageTolerance", Reason: "must be in [0, 1]"}
		}
	}
	return slippage, nil
}

// SubmitOrderResponse acknowledges an accepted submission.
type SubmitOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
