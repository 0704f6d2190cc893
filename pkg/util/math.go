package util

import (
	"math"
	"math/rand"
)

const hexChars = "0123456789abcdef"

// RandomBetween returns a uniform random float in [min, max).
func RandomBetween(min, max float64) float64 {
	return rand.Float64()*(max-min) + min
}

// MockTxHash returns a random 64-character lowercase hex string shaped like
// an on-chain transaction signature.
func MockTxHash() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = hexChars[rand.Intn(len(hexChars))]
	}
	return string(b)
}

// PriceImpact estimates how much an input amount moves the pool price,
// as a percentage of available liquidity.
func PriceImpact(amountIn, liquidityDepth float64) float64 {
	return (amountIn / liquidityDepth) * 100
}

// ApplySlippage reduces v by the given fractional tolerance.
// ApplySlippage(100, 0.01) == 99.
func ApplySlippage(v, tolerance float64) float64 {
	return v * (1 - tolerance)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
