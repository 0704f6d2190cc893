package dex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hemanth5544/Order-Execution-Engine/params"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/util"
)

// Adapter is one liquidity venue. The simulated implementation below stands
// in for a real network client; a production adapter keeps the same
// signatures and numeric contracts, so the router and executor never change.
type Adapter interface {
	Name() string
	// Quote prices amountIn of tokenIn against tokenOut. Blocks for the
	// venue's (simulated) network latency.
	Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64) (core.Quote, error)
	// Execute performs the swap. amountOut always lands in
	// [minAmountOut*0.995, minAmountOut].
	Execute(ctx context.Context, tokenIn, tokenOut string, amountIn, minAmountOut float64) (core.Fill, error)
}

// BasePrice is the shared reference price all simulated venues derive their
// quotes from. Safe for concurrent use.
type BasePrice struct {
	mu    sync.RWMutex
	price float64
}

func NewBasePrice(p float64) *BasePrice { return &BasePrice{price: p} }

func (b *BasePrice) Get() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.price
}

func (b *BasePrice) Set(p float64) {
	b.mu.Lock()
	b.price = p
	b.mu.Unlock()
}

// SimulatedVenue produces randomized quotes within a per-venue variance band
// and simulates execution latency.
type SimulatedVenue struct {
	params    params.Venue
	quoteDly  params.Delay
	execDly   params.Delay
	basePrice *BasePrice
	logger    *zap.SugaredLogger
}

func NewSimulatedVenue(p params.Venue, quoteDly, execDly params.Delay, base *BasePrice, logger *zap.SugaredLogger) *SimulatedVenue {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SimulatedVenue{
		params:    p,
		quoteDly:  quoteDly,
		execDly:   execDly,
		basePrice: base,
		logger:    logger,
	}
}

func (v *SimulatedVenue) Name() string { return v.params.Name }

func (v *SimulatedVenue) Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64) (core.Quote, error) {
	v.logger.Debugw("fetching_quote", "venue", v.params.Name, "token_in", tokenIn, "token_out", tokenOut, "amount_in", amountIn)

	if err := v.sleep(ctx, v.quoteDly); err != nil {
		return core.Quote{}, fmt.Errorf("%w: %s quote: %v", core.ErrVenue, v.params.Name, err)
	}

	variance := util.RandomBetween(v.params.VarianceMin, v.params.VarianceMax)
	price := v.basePrice.Get() * variance
	liquidityDepth := util.RandomBetween(v.params.LiquidityMin, v.params.LiquidityMax)

	grossAmountOut := amountIn * price
	estimatedAmountOut := grossAmountOut - grossAmountOut*v.params.Fee

	quote := core.Quote{
		Venue:              v.params.Name,
		Price:              util.Round(price, 6),
		Fee:                util.Round(v.params.Fee, 6),
		EstimatedAmountOut: util.Round(estimatedAmountOut, 6),
		LiquidityDepth:     util.Round(liquidityDepth, 6),
		PriceImpact:        util.Round(util.PriceImpact(amountIn, liquidityDepth), 4),
	}

	v.logger.Debugw("quote_received", "venue", v.params.Name, "price", quote.Price, "estimated_amount_out", quote.EstimatedAmountOut)
	return quote, nil
}

func (v *SimulatedVenue) Execute(ctx context.Context, tokenIn, tokenOut string, amountIn, minAmountOut float64) (core.Fill, error) {
	v.logger.Infow("executing_swap", "venue", v.params.Name, "token_in", tokenIn, "token_out", tokenOut, "amount_in", amountIn, "min_amount_out", minAmountOut)

	if err := v.sleep(ctx, v.execDly); err != nil {
		return core.Fill{}, fmt.Errorf("%w: %s execute: %v", core.ErrVenue, v.params.Name, err)
	}

	// Bounded slippage between quote and execution.
	slippageVariance := util.RandomBetween(0.995, 1.0)
	amountOut := minAmountOut * slippageVariance
	executedPrice := amountOut / amountIn

	fill := core.Fill{
		TxHash:        util.MockTxHash(),
		ExecutedPrice: util.Round(executedPrice, 6),
		AmountOut:     util.Round(amountOut, 6),
	}

	v.logger.Infow("swap_executed", "venue", v.params.Name, "tx_hash", fill.TxHash, "executed_price", fill.ExecutedPrice, "amount_out", fill.AmountOut)
	return fill, nil
}

// sleep blocks for a random duration in the range, honoring cancellation.
func (v *SimulatedVenue) sleep(ctx context.Context, d params.Delay) error {
	wait := time.Duration(util.RandomBetween(float64(d.Min), float64(d.Max)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

var _ Adapter = (*SimulatedVenue)(nil)

// NewSimulatedVenues builds one SimulatedVenue per configured venue, all
// sharing one base price. Returns the base price handle so callers can move
// the market.
func NewSimulatedVenues(cfg params.Dex, logger *zap.SugaredLogger) ([]Adapter, *BasePrice) {
	base := NewBasePrice(cfg.BasePrice)
	adapters := make([]Adapter, len(cfg.Venues))
	for i, v := range cfg.Venues {
		adapters[i] = NewSimulatedVenue(v, cfg.QuoteDelay, cfg.ExecutionDelay, base, logger)
	}
	return adapters, base
}
