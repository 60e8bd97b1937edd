package metric

import (
	"math"
	"math/rand"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/raykavin/candleline/pkg/core"
)

// Summary describes a bar window: range, change and close-to-close returns
type Summary struct {
	Bars        int
	First       float64
	Last        float64
	Change      float64 // percent from the first to the last close
	High        float64
	Low         float64
	MeanReturn  float64 // mean close-to-close return in percent
	StdDev      float64
	MaxDrawdown float64 // deepest fall from a running close peak, in percent
	Returns     []float64
	Interval    BootstrapInterval // of the mean return
}

// Returns computes close-to-close changes in percent, skipping zero closes
func Returns(bars []core.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}

	pairs := lo.Zip2(bars[:len(bars)-1], bars[1:])
	pairs = lo.Filter(pairs, func(p lo.Tuple2[core.Bar, core.Bar], _ int) bool { return p.A.Close != 0 })
	return lo.Map(pairs, func(p lo.Tuple2[core.Bar, core.Bar], _ int) float64 {
		return (p.B.Close - p.A.Close) / p.A.Close * 100
	})
}

// MaxDrawdown returns the largest percent fall from a running peak of closes
func MaxDrawdown(closes []float64) float64 {
	var peak, drawdown float64
	for _, c := range closes {
		peak = math.Max(peak, c)
		if peak > 0 {
			drawdown = math.Max(drawdown, (peak-c)/peak*100)
		}
	}
	return drawdown
}

// Summarize computes the summary of bars with a 95% bootstrap interval of the mean return
func Summarize(bars []core.Bar, samples int, rng *rand.Rand) Summary {
	if len(bars) == 0 {
		return Summary{}
	}

	closes := core.Closes(bars)
	returns := Returns(bars)
	summary := Summary{
		Bars:        len(bars),
		First:       closes[0],
		Last:        closes.Last(0),
		High:        floats.Max(lo.Map(bars, func(b core.Bar, _ int) float64 { return b.High })),
		Low:         floats.Min(lo.Map(bars, func(b core.Bar, _ int) float64 { return b.Low })),
		MaxDrawdown: MaxDrawdown(closes),
		Returns:     returns,
	}

	if summary.First != 0 {
		summary.Change = (summary.Last - summary.First) / summary.First * 100
	}

	if len(returns) > 0 {
		summary.MeanReturn = stat.Mean(returns, nil)
		if len(returns) > 1 {
			summary.StdDev = stat.StdDev(returns, nil)
		}
		summary.Interval = Bootstrap(returns, func(v []float64) float64 { return stat.Mean(v, nil) }, samples, 0.95, rng)
	}

	return summary
}
