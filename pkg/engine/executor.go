package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/broadcast"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/dex"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/storage"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/util"
)

// Outcome is what a single execution attempt produced. ExecuteOrder always
// completes with one of these; it never panics or returns an error, so the
// scheduler can base its re-admission policy purely on the outcome.
type Outcome int

const (
	// OutcomeConfirmed: terminal success, order filled.
	OutcomeConfirmed Outcome = iota
	// OutcomeRetry: retryable failure, order re-entered pending with an
	// incremented retry count. The scheduler re-admits the job.
	OutcomeRetry
	// OutcomeFailed: terminal failure, retry ceiling reached.
	OutcomeFailed
	// OutcomeNotFound: no order row exists. Fatal for the job, never
	// retried.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRetry:
		return "retry"
	case OutcomeFailed:
		return "failed"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

// Executor drives one order through its lifecycle:
//
//	pending → routing → building → submitted → confirmed
//
// persisting and broadcasting every transition. All collaborators are
// injected; nothing here is global.
type Executor struct {
	store      storage.OrderStore
	router     *dex.Router
	hub        *broadcast.Hub
	maxRetries int
	logger     *zap.SugaredLogger
}

func NewExecutor(store storage.OrderStore, router *dex.Router, hub *broadcast.Hub, maxRetries int, logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{
		store:      store,
		router:     router,
		hub:        hub,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ExecuteOrder runs one execution attempt for the order. Per-order
// transitions are strictly sequential; the scheduler guarantees at most one
// active attempt per order id.
func (e *Executor) ExecuteOrder(ctx context.Context, orderID string) Outcome {
	e.logger.Infow("order_execution_start", "order_id", orderID)

	order, err := e.store.GetOrder(orderID)
	if err != nil {
		e.logger.Errorw("order_load_failed", "order_id", orderID, "err", err)
		return e.handleError(orderID, err)
	}
	if order == nil {
		e.logger.Errorw("order_not_found", "order_id", orderID)
		return OutcomeNotFound
	}

	if err := e.run(ctx, order); err != nil {
		e.logger.Errorw("order_execution_failed", "order_id", orderID, "err", err)
		return e.handleError(orderID, err)
	}

	return OutcomeConfirmed
}

// run performs steps routing through confirmed. Any error falls through to
// handleError.
func (e *Executor) run(ctx context.Context, order *core.Order) error {
	orderID := order.OrderID

	if err := e.updateStatus(orderID, core.StatusRouting, "Fetching quotes from venues"); err != nil {
		return err
	}

	cmp, err := e.router.CompareQuotes(ctx, order.TokenIn, order.TokenOut, order.AmountIn)
	if err != nil {
		return err
	}

	// Quotes are kept for audit regardless of which venue wins.
	for _, q := range cmp.Quotes {
		if err := e.store.SaveQuote(orderID, q); err != nil {
			return err
		}
	}

	best := cmp.Best()
	e.logger.Infow("venue_selected",
		"order_id", orderID,
		"selected_dex", cmp.BestVenue,
		"estimated_amount_out", best.EstimatedAmountOut,
		"price_difference_percent", cmp.PriceDifferencePercent,
	)
	e.hub.Publish(orderID, core.StatusRouting, broadcast.PublishOpts{
		Message: fmt.Sprintf("Selected %s (%g%% better)", cmp.BestVenue, cmp.PriceDifferencePercent),
		Data: map[string]any{
			"selected_dex":   cmp.BestVenue,
			"executed_price": best.Price,
		},
	})

	if err := e.updateStatus(orderID, core.StatusBuilding, "Building transaction"); err != nil {
		return err
	}

	minAmountOut := util.ApplySlippage(best.EstimatedAmountOut, order.SlippageTolerance)

	if err := e.updateStatus(orderID, core.StatusSubmitted, "Transaction submitted to network"); err != nil {
		return err
	}

	fill, err := e.router.Execute(ctx, cmp.BestVenue, order.TokenIn, order.TokenOut, order.AmountIn, minAmountOut)
	if err != nil {
		return err
	}

	// tx hash, executed price and amount out land atomically with the
	// confirmed transition; the store stamps completed_at.
	if _, err := e.store.UpdateOrderStatus(orderID, core.StatusConfirmed, storage.Update{
		SelectedVenue: &cmp.BestVenue,
		TxHash:        &fill.TxHash,
		ExecutedPrice: &fill.ExecutedPrice,
		AmountOut:     &fill.AmountOut,
	}); err != nil {
		return err
	}

	e.hub.Publish(orderID, core.StatusConfirmed, broadcast.PublishOpts{
		Message: "Order executed successfully",
		TxHash:  fill.TxHash,
		Data: map[string]any{
			"executed_price": fill.ExecutedPrice,
			"amount_out":     fill.AmountOut,
			"selected_dex":   cmp.BestVenue,
		},
	})

	e.logger.Infow("order_execution_complete",
		"order_id", orderID,
		"tx_hash", fill.TxHash,
		"executed_price", fill.ExecutedPrice,
		"amount_out", fill.AmountOut,
	)
	return nil
}

// updateStatus persists a transition and broadcasts it.
func (e *Executor) updateStatus(orderID string, status core.OrderStatus, message string) error {
	if _, err := e.store.UpdateOrderStatus(orderID, status, storage.Update{}); err != nil {
		return err
	}
	e.hub.Publish(orderID, status, broadcast.PublishOpts{Message: message})
	return nil
}

// handleError applies the retry policy: re-read the current retry count,
// increment it, and either re-enter pending or mark the order failed once
// the ceiling is reached.
func (e *Executor) handleError(orderID string, cause error) Outcome {
	order, err := e.store.GetOrder(orderID)
	if err != nil {
		e.logger.Errorw("retry_state_unavailable", "order_id", orderID, "err", err)
		return OutcomeFailed
	}
	if order == nil {
		e.logger.Errorw("cannot_handle_error_order_missing", "order_id", orderID)
		return OutcomeNotFound
	}

	errText := cause.Error()
	newRetryCount := order.RetryCount + 1

	if newRetryCount < e.maxRetries {
		e.logger.Infow("order_retry_scheduled",
			"order_id", orderID,
			"retry_count", newRetryCount,
			"max_retries", e.maxRetries,
		)

		if _, err := e.store.UpdateOrderStatus(orderID, core.StatusPending, storage.Update{
			RetryCount:   &newRetryCount,
			ErrorMessage: &errText,
		}); err != nil {
			e.logger.Errorw("retry_persist_failed", "order_id", orderID, "err", err)
		}

		e.hub.Publish(orderID, core.StatusPending, broadcast.PublishOpts{
			Message: fmt.Sprintf("Retrying order (attempt %d/%d)", newRetryCount+1, e.maxRetries),
		})
		return OutcomeRetry
	}

	e.logger.Errorw("order_max_retries_reached", "order_id", orderID, "retry_count", newRetryCount)

	if _, err := e.store.UpdateOrderStatus(orderID, core.StatusFailed, storage.Update{
		RetryCount:   &newRetryCount,
		ErrorMessage: &errText,
	}); err != nil {
		e.logger.Errorw("failure_persist_failed", "order_id", orderID, "err", err)
	}

	e.hub.Publish(orderID, core.StatusFailed, broadcast.PublishOpts{
		Message: "Order execution failed after maximum retries",
		Error:   errText,
	})
	return OutcomeFailed
}
