package core

// Quote is one venue's priced offer for an amount of input token. Ephemeral:
// produced per comparison, persisted only for audit, never mutated.
type Quote struct {
	Venue              string  `json:"dex_name"`
	Price              float64 `json:"price"`
	Fee                float64 `json:"fee"`
	EstimatedAmountOut float64 `json:"estimated_amount_out"`
	LiquidityDepth     float64 `json:"liquidity_depth,omitempty"`
	PriceImpact        float64 `json:"price_impact,omitempty"`
}

// QuoteComparison aggregates the quotes gathered for one routing decision.
type QuoteComparison struct {
	Quotes                 []Quote `json:"quotes"`
	BestVenue              string  `json:"best_dex"`
	PriceDifference        float64 `json:"price_difference"`         // best minus runner-up, absolute
	PriceDifferencePercent float64 `json:"price_difference_percent"` // relative to the larger output
}

// Best returns the winning quote.
func (c QuoteComparison) Best() Quote {
	for _, q := range c.Quotes {
		if q.Venue == c.BestVenue {
			return q
		}
	}
	return Quote{}
}

// Fill is the result of executing a swap on a venue.
type Fill struct {
	TxHash        string  `json:"tx_hash"`
	ExecutedPrice float64 `json:"executed_price"`
	AmountOut     float64 `json:"amount_out"`
}
