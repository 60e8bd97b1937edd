package chart

import (
	"math"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/samber/lo"
)

// Candle is the pixel geometry of one bar on the price pane
type Candle struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	WickTop    float64 `json:"wickTop"`
	WickBottom float64 `json:"wickBottom"`
	BodyX      float64 `json:"bodyX"`
	BodyY      float64 `json:"bodyY"`
	BodyWidth  float64 `json:"bodyWidth"`
	BodyHeight float64 `json:"bodyHeight"`
	Rise       bool    `json:"rise"`
	Color      string  `json:"color"`
}

// VolumeBar is the pixel geometry of one bar on the volume pane
type VolumeBar struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// GridLine is one horizontal rule of the price pane and its axis label
type GridLine struct {
	Y     float64 `json:"y"`
	X2    float64 `json:"x2"`
	Label string  `json:"label"`
}

const gridRows = 6

// Candles lays out wick and body of every bar. Bodies are at least one pixel
// tall so that flat bars stay visible.
func Candles(f *Frame) []Candle {
	half := f.Settings.CandleWidth / 2

	return lo.Map(f.Bars, func(bar core.Bar, i int) Candle {
		rise := bar.Rise()
		openY, closeY := f.PriceToY(bar.Open), f.PriceToY(bar.Close)

		return Candle{
			Index:      i,
			X:          f.CoordinateX[i],
			WickTop:    f.PriceToY(bar.High),
			WickBottom: f.PriceToY(bar.Low),
			BodyX:      f.CoordinateX[i] - half,
			BodyY:      math.Min(openY, closeY),
			BodyWidth:  f.Settings.CandleWidth,
			BodyHeight: math.Max(1, math.Abs(closeY-openY)),
			Rise:       rise,
			Color:      f.palette(rise),
		}
	})
}

// Volumes lays out the volume pane of the given height. The largest volume of
// the window fills the configured headroom fraction of the pane; bars of zero
// height are left out.
func Volumes(f *Frame, height float64) []VolumeBar {
	maxVolume := 0.0
	for _, bar := range f.Bars {
		if bar.Volume > maxVolume {
			maxVolume = bar.Volume
		}
	}

	if maxVolume <= 0 {
		return []VolumeBar{}
	}

	headroom := f.Settings.VolumeHeadroom
	if headroom <= 0 || headroom > 1 {
		headroom = 1
	}

	bars := make([]VolumeBar, 0, len(f.Bars))
	for i, bar := range f.Bars {
		h := math.Max(0, bar.Volume) / maxVolume * height * headroom
		if h == 0 || math.IsNaN(h) {
			continue
		}

		bars = append(bars, VolumeBar{
			Index:  i,
			X:      f.CoordinateX[i] - f.Settings.CandleWidth/2,
			Y:      height - h,
			Width:  f.Settings.CandleWidth,
			Height: h,
			Color:  f.palette(bar.Rise()),
		})
	}
	return bars
}

// PriceGrid returns the horizontal rules of the price pane, top to bottom,
// labelled from the maximum down to the minimum price
func PriceGrid(f *Frame) []GridLine {
	vp := f.Viewport
	step := f.Range.Span() / (gridRows - 1)
	x2 := vp.PlotWidth()

	return lo.Times(gridRows, func(i int) GridLine {
		return GridLine{
			Y:     vp.Padding + float64(i)*vp.ValidHeight()/(gridRows-1),
			X2:    x2,
			Label: FormatPriceLabel(f.Range.Max - float64(i)*step),
		}
	})
}

func (f *Frame) palette(rise bool) string {
	if rise {
		return f.Settings.RiseColor
	}
	return f.Settings.FallColor
}
