package core

import (
	"gonum.org/v1/gonum/floats"
)

// PriceRange is the visible price extent of a bar window
type PriceRange struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// PriceRangeOf returns the highest high and the lowest low of bars
func PriceRangeOf(bars []Bar) PriceRange {
	if len(bars) == 0 {
		return PriceRange{}
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, bar := range bars {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	return PriceRange{
		Max: floats.Max(highs),
		Min: floats.Min(lows),
	}
}

// Degenerate reports a zero-height range, where price/pixel conversion has no slope
func (r PriceRange) Degenerate() bool {
	return r.Max == r.Min
}

// Span returns max - min
func (r PriceRange) Span() float64 {
	return r.Max - r.Min
}

// Contains reports whether price lies inside the range, bounds included
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}
