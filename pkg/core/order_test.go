package core

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to routing", StatusPending, StatusRouting, true},
		{"routing to building", StatusRouting, StatusBuilding, true},
		{"building to submitted", StatusBuilding, StatusSubmitted, true},
		{"submitted to confirmed", StatusSubmitted, StatusConfirmed, true},
		{"routing back to pending on retry", StatusRouting, StatusPending, true},
		{"submitted to failed", StatusSubmitted, StatusFailed, true},
		{"pending to failed", StatusPending, StatusFailed, true},

		// no stage skipping
		{"pending to building", StatusPending, StatusBuilding, false},
		{"pending to confirmed", StatusPending, StatusConfirmed, false},
		{"routing to submitted", StatusRouting, StatusSubmitted, false},
		{"building to confirmed", StatusBuilding, StatusConfirmed, false},

		// terminal states never transition
		{"confirmed to failed", StatusConfirmed, StatusFailed, false},
		{"confirmed to pending", StatusConfirmed, StatusPending, false},
		{"failed to pending", StatusFailed, StatusPending, false},
		{"failed to routing", StatusFailed, StatusRouting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusRouting, StatusBuilding, StatusSubmitted} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []OrderStatus{StatusConfirmed, StatusFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestValidOrderType(t *testing.T) {
	for _, ot := range []OrderType{OrderTypeMarket, OrderTypeLimit, OrderTypeSniper} {
		if !ValidOrderType(ot) {
			t.Errorf("%s should be valid", ot)
		}
	}
	if ValidOrderType("stop-loss") {
		t.Error("stop-loss should not be valid")
	}
}

func TestQuoteComparisonBest(t *testing.T) {
	cmp := QuoteComparison{
		Quotes: []Quote{
			{Venue: "raydium", EstimatedAmountOut: 99},
			{Venue: "meteora", EstimatedAmountOut: 101},
		},
		BestVenue: "meteora",
	}
	if got := cmp.Best(); got.Venue != "meteora" || got.EstimatedAmountOut != 101 {
		t.Errorf("Best() = %+v, want meteora quote", got)
	}
}
