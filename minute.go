package candleline

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/market"
)

const (
	minutePeriod = "1m"
	dayPeriod    = "1d"
)

// MinuteView is the intraday chart of one trading day
type MinuteView struct {
	Code   string                 `json:"code"`
	Width  float64                `json:"width"`
	Height float64                `json:"height"`
	Limit  float64                `json:"limit"`
	Points []chart.MinutePoint    `json:"points"`
	Path   []chart.Point          `json:"path"`
	Color  string                 `json:"color"`
	Grid   []chart.MinuteGridLine `json:"grid"`
	Ticks  []chart.TimeTick       `json:"ticks"`
}

// LoadMinutes fetches the one minute bars of the last trading day ending at
// anchor, or the latest day when anchor is zero, and prices them against the
// daily close before that day
func LoadMinutes(ctx context.Context, source core.BarSource, code string, anchor time.Time) ([]chart.MinutePoint, error) {
	bars, err := source.Bars(ctx, code, minutePeriod, anchor, 2*chart.MinutesPerDay)
	if err != nil {
		return nil, fmt.Errorf("minute bars of %s: %w", code, err)
	}
	if len(bars) == 0 {
		return []chart.MinutePoint{}, nil
	}

	day := tradingDay(bars[len(bars)-1].Time)
	bars = lo.Filter(bars, func(bar core.Bar, _ int) bool {
		return tradingDay(bar.Time).Equal(day)
	})
	bars = core.LastBars(bars, chart.MinutesPerDay)

	prevClose := 0.0
	daily, err := source.Bars(ctx, code, dayPeriod, day.Add(-time.Millisecond), 1)
	if err == nil && len(daily) > 0 {
		prevClose = daily[len(daily)-1].Close
	}

	return chart.MinutePoints(bars, prevClose), nil
}

func tradingDay(t time.Time) time.Time {
	local := t.In(market.Shanghai)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, market.Shanghai)
}

// NewMinuteView lays out points on a width x height intraday chart
func NewMinuteView(width, height float64, code string, points []chart.MinutePoint) MinuteView {
	f := chart.NewMinuteFrame(width, height, code, points)

	return MinuteView{
		Code:   code,
		Width:  width,
		Height: height,
		Limit:  f.Limit,
		Points: f.Points,
		Path:   f.Path(),
		Color:  f.Color(),
		Grid:   f.PercentGrid(),
		Ticks:  f.TimeTicks(),
	}
}

const (
	colorMinuteBg       = "#191B1F"
	colorMinuteGrid     = "#363C47"
	colorMinuteZero     = "#888888"
	colorMinuteLabel    = "#666666"
	minuteLabelSize     = 12
	minuteLabelBaseline = 15
)

// RenderMinuteSVG draws the intraday chart on a dark background
func RenderMinuteSVG(view MinuteView) []byte {
	canvas := chart.NewCanvas(view.Width, view.Height)
	canvas.Rect(0, 0, view.Width, view.Height, colorMinuteBg, chart.Stroke{})

	left := view.Ticks[0].X
	right := view.Ticks[len(view.Ticks)-1].X

	canvas.Group("percent", 0, 0)
	for _, line := range view.Grid {
		stroke := chart.Stroke{Color: colorMinuteGrid, Width: 0.3}
		label := colorMinuteLabel
		if line.Zero {
			stroke = chart.Stroke{Color: colorMinuteZero, Width: 1}
			label = colorMinuteZero
		}

		canvas.Line(chart.Segment{From: chart.Point{X: left, Y: line.Y}, To: chart.Point{X: right, Y: line.Y}}, stroke)
		if line.Label != "" {
			canvas.Text(right+5, line.Y, line.Label, label, minuteLabelSize, "start")
		}
	}
	canvas.EndGroup()

	top := view.Grid[0].Y
	bottom := view.Grid[len(view.Grid)-1].Y

	canvas.Group("time", 0, 0)
	for _, tick := range view.Ticks {
		canvas.Line(chart.Segment{From: chart.Point{X: tick.X, Y: top}, To: chart.Point{X: tick.X, Y: bottom}},
			chart.Stroke{Color: colorMinuteGrid, Width: 0.5})
		canvas.Text(tick.X, view.Height-minuteLabelBaseline, tick.Label, colorMinuteLabel, minuteLabelSize, "middle")
	}
	canvas.EndGroup()

	canvas.Polyline(view.Path, chart.Stroke{Color: view.Color, Width: 1.5})

	return canvas.Bytes()
}
