package chart

import (
	"sort"

	"github.com/raykavin/candleline/pkg/core"
)

// Frame is the transform of one render pass: the displayed bars, their candle
// centres, the price range and the viewport they are drawn into
type Frame struct {
	Bars        []core.Bar
	CoordinateX []float64
	Range       core.PriceRange
	Viewport    core.Viewport
	Settings    core.ChartSettings
}

// NewFrame builds the transform of bars drawn into vp. It fails with
// ErrViewportNotMeasured until the host box has a size.
func NewFrame(bars []core.Bar, vp core.Viewport, settings core.ChartSettings) (*Frame, error) {
	if !vp.Measured() {
		return nil, core.ErrViewportNotMeasured
	}

	return &Frame{
		Bars:        bars,
		CoordinateX: CoordinateX(len(bars), settings.CandleWidth, settings.CandleMargin),
		Range:       core.PriceRangeOf(bars),
		Viewport:    vp,
		Settings:    settings,
	}, nil
}

// Degenerate reports whether the visible price range has zero height
func (f *Frame) Degenerate() bool {
	return f.Range.Degenerate()
}

func (f *Frame) PriceToY(price float64) float64 {
	return PriceToY(price, f.Viewport.Height, f.Viewport.Padding, f.Range.Min, f.Range.Max)
}

func (f *Frame) YToPrice(y float64) float64 {
	return YToPrice(y, f.Viewport.Height, f.Viewport.Padding, f.Range.Min, f.Range.Max)
}

func (f *Frame) IndexToX(index int) float64 {
	return IndexToX(index, f.Settings.CandleWidth, f.Settings.CandleMargin)
}

func (f *Frame) NearestIndex(x float64) int {
	return NearestIndex(x, f.CoordinateX)
}

// Snap returns the bar closest to pixel x, false when the frame has no bars
func (f *Frame) Snap(x float64) (int, core.Bar, bool) {
	index := f.NearestIndex(x)
	if index < 0 {
		return -1, core.Bar{}, false
	}
	return index, f.Bars[index], true
}

// TimeToX maps a unix millisecond timestamp to a pixel x. Times of displayed
// bars land on their candle centre, times between bars are interpolated and
// times outside the window are extrapolated from the nearest bar spacing.
func (f *Frame) TimeToX(ms int64) float64 {
	n := len(f.Bars)
	switch n {
	case 0:
		return f.Viewport.PlotWidth() / 2
	case 1:
		if ms == f.Bars[0].Timestamp() {
			return f.CoordinateX[0]
		}
		if ms < f.Bars[0].Timestamp() {
			return 0
		}
		return f.Viewport.Width
	}

	i := sort.Search(n, func(i int) bool { return f.Bars[i].Timestamp() >= ms })
	if i < n && f.Bars[i].Timestamp() == ms {
		return f.CoordinateX[i]
	}

	var lo, hi int
	switch {
	case i == 0:
		lo, hi = 0, 1
	case i == n:
		lo, hi = n-2, n-1
	default:
		lo, hi = i-1, i
	}

	t0, t1 := f.Bars[lo].Timestamp(), f.Bars[hi].Timestamp()
	position := float64(lo) + float64(ms-t0)/float64(t1-t0)*float64(hi-lo)
	return position*f.Settings.Step() + f.Settings.CandleWidth/2
}

// DomainPoint converts a pointer position into the anchor it designates:
// the time of the nearest bar and the price under y
func (f *Frame) DomainPoint(x, y float64) (ms int64, price float64, ok bool) {
	_, bar, ok := f.Snap(x)
	if !ok {
		return 0, 0, false
	}
	return bar.Timestamp(), f.YToPrice(y), true
}
