package chart

import (
	"math"
)

// Round2 rounds to the price tick of 0.01
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceToY maps a price to the y pixel of a pane of the given height.
// A degenerate range or a pane too short for its padding maps every price
// to the vertical middle of the pane.
func PriceToY(price, height, padding, minPrice, maxPrice float64) float64 {
	validHeight := height - 2*padding
	if validHeight <= 0 || maxPrice == minPrice {
		return height / 2
	}

	return padding + (maxPrice-price)/(maxPrice-minPrice)*validHeight
}

// YToPrice is the inverse of PriceToY. y is clamped into [padding, height-padding]
// and the price is rounded to 2 decimals.
func YToPrice(y, height, padding, minPrice, maxPrice float64) float64 {
	if maxPrice == minPrice {
		return Round2(maxPrice)
	}

	validHeight := height - 2*padding
	if validHeight <= 0 {
		return Round2((maxPrice + minPrice) / 2)
	}

	clamped := math.Max(padding, math.Min(height-padding, y))
	price := maxPrice - (clamped-padding)/validHeight*(maxPrice-minPrice)
	return Round2(price)
}

// IndexToX returns the x pixel of the centre of the candle at index
func IndexToX(index int, candleWidth, candleMargin float64) float64 {
	return float64(index)*(candleMargin+candleWidth) + candleWidth/2
}

// CoordinateX returns the candle centres of a window of n bars
func CoordinateX(n int, candleWidth, candleMargin float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = IndexToX(i, candleWidth, candleMargin)
	}
	return xs
}

// NearestIndex returns the index of the coordinate closest to x, the lowest
// index on ties, or -1 when there are no coordinates
func NearestIndex(x float64, coordinateX []float64) int {
	if len(coordinateX) == 0 {
		return -1
	}

	closest := 0
	minDist := math.Abs(coordinateX[0] - x)
	for i := 1; i < len(coordinateX); i++ {
		if dist := math.Abs(coordinateX[i] - x); dist < minDist {
			minDist = dist
			closest = i
		}
	}
	return closest
}
