package core

import "math"

// Viewport is the pixel box of one render pass
type Viewport struct {
	Width       float64
	Height      float64
	Padding     float64
	RightMargin float64
	BarCount    int
}

// NewViewport derives the bar count that fits in the box for the given candle geometry
func NewViewport(width, height float64, settings ChartSettings) Viewport {
	vp := Viewport{
		Width:       width,
		Height:      height,
		Padding:     settings.Padding,
		RightMargin: settings.RightMargin,
	}

	if step := settings.Step(); step > 0 && width > settings.RightMargin {
		vp.BarCount = int(math.Floor((width - settings.RightMargin) / step))
	}

	return vp
}

// Measured reports whether the viewport has a usable size
func (v Viewport) Measured() bool {
	return v.Width > 0 && v.Height > 0
}

// ValidHeight is the height of the price band between the paddings
func (v Viewport) ValidHeight() float64 {
	return v.Height - 2*v.Padding
}

// PlotWidth is the width available to candles, excluding the right margin
func (v Viewport) PlotWidth() float64 {
	return v.Width - v.RightMargin
}
