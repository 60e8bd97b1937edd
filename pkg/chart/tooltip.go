package chart

import (
	"github.com/raykavin/candleline/pkg/core"
)

const (
	TooltipWidth  = 160
	TooltipHeight = 180
)

// TooltipRow is one label/value line of the tooltip
type TooltipRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TooltipView is the hovered bar summary box
type TooltipView struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Color  string       `json:"color"`
	Rows   []TooltipRow `json:"rows"`
}

// Tooltip describes the bar at index. The box sits on the side of the chart
// away from the pointer: left edge for the right half of the bars, right edge otherwise.
func Tooltip(f *Frame, index int) (TooltipView, bool) {
	if index < 0 || index >= len(f.Bars) {
		return TooltipView{}, false
	}

	x := f.Viewport.Width - TooltipWidth
	if float64(index) >= float64(len(f.CoordinateX))/2 {
		x = 0
	}

	bar := f.Bars[index]
	color := f.Settings.RiseColor
	if bar.ChangePercent < 0 {
		color = f.Settings.FallColor
	}

	return TooltipView{
		X:      x,
		Width:  TooltipWidth,
		Height: TooltipHeight,
		Color:  color,
		Rows:   tooltipRows(bar),
	}, true
}

func tooltipRows(bar core.Bar) []TooltipRow {
	return []TooltipRow{
		{Label: "时间", Value: FormatBarTime(bar.Time)},
		{Label: "开盘价", Value: FormatPrice(bar.Open)},
		{Label: "最高价", Value: FormatPrice(bar.High)},
		{Label: "最低价", Value: FormatPrice(bar.Low)},
		{Label: "收盘价", Value: FormatPrice(bar.Close)},
		{Label: "涨跌幅", Value: FormatPercent(bar.ChangePercent)},
		{Label: "换手率", Value: FormatPercent(bar.TurnoverRate)},
	}
}

// VolumeHeader is the caption of the volume pane for the bar at index
func VolumeHeader(f *Frame, index int) string {
	volume := 0.0
	if index >= 0 && index < len(f.Bars) {
		volume = f.Bars[index].Volume
	}
	return "成交量：" + FormatVolume(volume)
}
