package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/samber/lo"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

// Sentinel marks positions without enough history for the average
const Sentinel = -1.0

// Line is a computed moving average ready to be drawn
type Line struct {
	Name   string               `json:"name"`
	Period int                  `json:"period"`
	Color  string               `json:"color"`
	Values core.Series[float64] `json:"values"`
}

// MA computes the simple moving average of the closes over period bars.
// The output has one value per bar, Sentinel before the first full window,
// and is rounded to 2 decimals. A bar without a numeric close fails with a
// *core.MissingCloseError.
//
// Every window is summed on its own, newest close first, so that rounding
// does not depend on the bars before the window.
func MA(bars []core.Bar, period int) (core.Series[float64], error) {
	return average(bars, period, windowMeans)
}

func windowMeans(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := period - 1; i < len(closes); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += closes[i-j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA is MA with exponential weighting
func EMA(bars []core.Bar, period int) (core.Series[float64], error) {
	return average(bars, period, talib.Ema)
}

func average(bars []core.Bar, period int, fn func([]float64, int) []float64) (core.Series[float64], error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidPeriod, period)
	}

	out := make(core.Series[float64], len(bars))
	for i := range out {
		out[i] = Sentinel
	}

	if len(bars) < period {
		return out, nil
	}

	closes := core.Closes(bars)
	for i, v := range closes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &core.MissingCloseError{Index: i}
		}
	}

	values := fn(closes, period)
	for i := period - 1; i < len(values); i++ {
		out[i] = chart.RoundFixed(values[i], 2)
	}

	return out, nil
}

// Lines computes every configured moving average of bars
func Lines(bars []core.Bar, configs []core.MALine) ([]Line, error) {
	lines := make([]Line, 0, len(configs))
	for _, cfg := range configs {
		values, err := MA(bars, cfg.Period)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Name, err)
		}

		lines = append(lines, Line{
			Name:   cfg.Name,
			Period: cfg.Period,
			Color:  cfg.Color,
			Values: values,
		})
	}
	return lines, nil
}

// Polylines maps a line onto f. Sentinel values split the line, so each
// returned polyline only holds computed points.
func Polylines(f *chart.Frame, values core.Series[float64]) [][]chart.Point {
	var (
		out     [][]chart.Point
		current []chart.Point
	)

	for i, v := range values {
		if v == Sentinel || i >= len(f.CoordinateX) {
			if len(current) > 0 {
				out = append(out, current)
				current = nil
			}
			continue
		}
		current = append(current, chart.Point{X: f.CoordinateX[i], Y: f.PriceToY(v)})
	}

	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// Legend renders "MA5: 12.34" for the value at index, "MA5: N/A" without one
func Legend(line Line, index int) string {
	if index < 0 || index >= len(line.Values) || line.Values[index] == Sentinel {
		return line.Name + ": N/A"
	}
	return line.Name + ": " + chart.FormatPrice(line.Values[index])
}

// Legends renders the legend of every line at index
func Legends(lines []Line, index int) []string {
	return lo.Map(lines, func(line Line, _ int) string {
		return Legend(line, index)
	})
}
