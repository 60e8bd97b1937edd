package candleline

import (
	"strconv"

	"github.com/raykavin/candleline/pkg/annotation"
	"github.com/raykavin/candleline/pkg/chart"
)

const (
	colorGrid      = "#eeeeee"
	colorAxisText  = "#666666"
	colorCrosshair = "#888888"
	colorTooltipBg = "#ffffff"
	colorNotice    = "#d32f2f"

	labelSize  = 10
	legendStep = 90
)

var (
	dashed  = "4 4"
	thin    = chart.Stroke{Color: colorGrid, Width: 1}
	guide   = chart.Stroke{Color: annotation.ColorGuide, Width: 1, Dash: dashed}
	preview = chart.Stroke{Color: annotation.ColorPreview, Width: 1.5, Dash: dashed}
)

// RenderSVG draws a view: price pane with grid, candles, moving averages,
// trend lines and crosshair, then the volume pane below it
func RenderSVG(view View) []byte {
	canvas := chart.NewCanvas(view.Width, view.TotalHeight())

	canvas.Group("price", 0, 0)
	for _, line := range view.Grid {
		canvas.Line(chart.Segment{From: chart.Point{X: 0, Y: line.Y}, To: chart.Point{X: line.X2, Y: line.Y}}, thin)
		canvas.Text(line.X2+4, line.Y, line.Label, colorAxisText, labelSize, "start")
	}

	for _, candle := range view.Candles {
		wick := chart.Segment{From: chart.Point{X: candle.X, Y: candle.WickTop}, To: chart.Point{X: candle.X, Y: candle.WickBottom}}
		canvas.Line(wick, chart.Stroke{Color: candle.Color, Width: 1})
		canvas.Rect(candle.BodyX, candle.BodyY, candle.BodyWidth, candle.BodyHeight, candle.Color, chart.Stroke{})
	}

	for i, ma := range view.MA {
		for _, points := range ma.Polylines {
			canvas.Polyline(points, chart.Stroke{Color: ma.Color, Width: 1})
		}
		canvas.Text(4+float64(i*legendStep), 8, ma.Legend, ma.Color, labelSize, "start")
	}

	renderScene(canvas, view)
	renderCrosshair(canvas, view)
	canvas.EndGroup()

	canvas.Group("volume", 0, view.VolumeTop)
	canvas.Text(4, -8, view.VolumeHeader, colorAxisText, labelSize, "start")
	for _, bar := range view.Volumes {
		canvas.Rect(bar.X, bar.Y, bar.Width, bar.Height, bar.Color, chart.Stroke{})
	}
	if view.Crosshair != nil {
		x := view.Crosshair.X
		canvas.Line(chart.Segment{From: chart.Point{X: x, Y: 0}, To: chart.Point{X: x, Y: view.VolumeHeight}},
			chart.Stroke{Color: colorCrosshair, Width: 1, Dash: dashed})
	}
	canvas.EndGroup()

	return canvas.Bytes()
}

func renderScene(canvas *chart.Canvas, view View) {
	scene := view.Annotation

	for _, line := range scene.Lines {
		canvas.Line(line.Segment,
			chart.Stroke{Color: line.Color, Width: line.Width, Opacity: line.Opacity},
			"data-line", strconv.FormatInt(line.ID, 10))
	}

	if button := scene.DeleteButton; button != nil {
		canvas.Rect(button.X, button.Y, button.Width, button.Height, annotation.ColorSelected, chart.Stroke{})
		canvas.Text(button.X+button.Width/2, button.Y+button.Height/2, button.Label, colorTooltipBg, labelSize, "middle")
	}

	if guides := scene.Guides; guides != nil {
		canvas.Line(guides.Vertical, guide)
		canvas.Line(guides.Horizontal, guide)
		canvas.Text(guides.PriceAt.X, guides.PriceAt.Y, guides.Price, annotation.ColorPriceText, labelSize+2, "start")
	}

	if scene.Preview != nil {
		canvas.Line(*scene.Preview, preview)
	}

	if scene.Marker != nil {
		canvas.Circle(*scene.Marker, 4, annotation.ColorPreview)
	}

	if scene.Action != "" {
		x := view.PlotWidth + 4
		canvas.Rect(x, 16, view.Width-x-4, 20, colorTooltipBg, chart.Stroke{Color: colorAxisText, Width: 1})
		canvas.Text(x+(view.Width-x-4)/2, 26, scene.Action, colorAxisText, labelSize, "middle")
	}

	if scene.Notice != "" {
		canvas.Text(view.PlotWidth/2, view.Height/2, scene.Notice, colorNotice, labelSize+2, "middle")
	}
}

func renderCrosshair(canvas *chart.Canvas, view View) {
	ch := view.Crosshair
	if ch == nil {
		return
	}

	stroke := chart.Stroke{Color: colorCrosshair, Width: 1, Dash: dashed}
	canvas.Line(chart.Segment{From: chart.Point{X: ch.X, Y: 0}, To: chart.Point{X: ch.X, Y: ch.Height}}, stroke)
	canvas.Line(chart.Segment{From: chart.Point{X: 0, Y: ch.Y}, To: chart.Point{X: ch.LineEndX, Y: ch.Y}}, stroke)
	canvas.Circle(chart.Point{X: ch.X, Y: ch.Y}, ch.MarkerSize, colorCrosshair)
	canvas.Text(ch.PriceX+4, ch.Y, ch.Price, colorAxisText, labelSize, "start")
	canvas.Text(ch.X, ch.Height+12, ch.Time, colorAxisText, labelSize, "middle")

	if tip := view.Tooltip; tip != nil {
		canvas.Rect(tip.X, tip.Y, tip.Width, tip.Height, colorTooltipBg, chart.Stroke{Color: colorGrid, Width: 1})
		rowHeight := tip.Height / float64(len(tip.Rows)+1)
		for i, row := range tip.Rows {
			y := tip.Y + rowHeight*float64(i+1)
			canvas.Text(tip.X+8, y, row.Label, colorAxisText, labelSize, "start")
			canvas.Text(tip.X+tip.Width-8, y, row.Value, tip.Color, labelSize, "end")
		}
	}
}
