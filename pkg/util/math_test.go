package util

import (
	"regexp"
	"testing"
)

func TestRandomBetween(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := RandomBetween(1, 10)
		if v < 1 || v >= 10 {
			t.Fatalf("RandomBetween(1, 10) = %v, out of range", v)
		}
	}
}

func TestMockTxHash(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	h1 := MockTxHash()
	h2 := MockTxHash()

	if !hexRe.MatchString(h1) {
		t.Errorf("MockTxHash() = %q, want 64 lowercase hex chars", h1)
	}
	if h1 == h2 {
		t.Errorf("two hashes identical: %q", h1)
	}
}

func TestPriceImpact(t *testing.T) {
	tests := []struct {
		amountIn  float64
		liquidity float64
		want      float64
	}{
		{1000, 100000, 1},
		{500, 100000, 0.5},
		{100000, 100000, 100},
	}
	for _, tt := range tests {
		if got := PriceImpact(tt.amountIn, tt.liquidity); got != tt.want {
			t.Errorf("PriceImpact(%v, %v) = %v, want %v", tt.amountIn, tt.liquidity, got, tt.want)
		}
	}
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		value     float64
		tolerance float64
		want      float64
	}{
		{100, 0.01, 99},
		{100, 0, 100},
		{100, 1, 0},
		{200, 0.5, 100},
	}
	for _, tt := range tests {
		if got := ApplySlippage(tt.value, tt.tolerance); got != tt.want {
			t.Errorf("ApplySlippage(%v, %v) = %v, want %v", tt.value, tt.tolerance, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.2345678, 6, 1.234568},
		{2.5, 0, 3},
		{99.0000004, 6, 99},
		{0.1234564, 6, 0.123456},
	}
	for _, tt := range tests {
		if got := Round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}
