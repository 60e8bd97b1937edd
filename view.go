package candleline

import (
	"context"

	"github.com/samber/lo"

	"github.com/raykavin/candleline/pkg/annotation"
	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/indicator"
)

// volumeGap separates the price pane from the volume pane
const volumeGap = 24

// MAView is one moving average drawn on the price pane
type MAView struct {
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Legend    string          `json:"legend"`
	Polylines [][]chart.Point `json:"polylines"`
}

// View is the complete geometry of one render pass
type View struct {
	Code         string               `json:"code"`
	Period       string               `json:"period"`
	Width        float64              `json:"width"`
	Height       float64              `json:"height"`
	PlotWidth    float64              `json:"plotWidth"`
	VolumeTop    float64              `json:"volumeTop"`
	VolumeHeight float64              `json:"volumeHeight"`
	VolumeHeader string               `json:"volumeHeader"`
	Candles      []chart.Candle       `json:"candles"`
	Volumes      []chart.VolumeBar    `json:"volumes"`
	Grid         []chart.GridLine     `json:"grid"`
	MA           []MAView             `json:"ma"`
	Crosshair    *chart.CrosshairView `json:"crosshair,omitempty"`
	Tooltip      *chart.TooltipView   `json:"tooltip,omitempty"`
	Annotation   annotation.Scene     `json:"annotation"`
	Seq          uint64               `json:"seq"`
	Error        string               `json:"error,omitempty"`
}

// TotalHeight is the height of both panes
func (v View) TotalHeight() float64 {
	return v.VolumeTop + v.VolumeHeight
}

// Snapshot renders the current bars, moving averages, crosshair and trend lines
func (c *Chart) Snapshot(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncLines(ctx); err != nil {
		return View{}, err
	}

	if err := c.measured(); err != nil {
		return View{}, err
	}

	f := c.frame
	view := View{
		Code:         c.key.Code,
		Period:       c.key.Period,
		Width:        f.Viewport.Width,
		Height:       f.Viewport.Height,
		PlotWidth:    f.Viewport.PlotWidth(),
		VolumeTop:    f.Viewport.Height + volumeGap,
		VolumeHeight: c.settings.VolumeHeight,
		Candles:      chart.Candles(f),
		Volumes:      chart.Volumes(f, c.settings.VolumeHeight),
		Grid:         chart.PriceGrid(f),
		Annotation:   c.engine.Scene(),
		Seq:          c.lines.Seq(),
	}

	if c.fetchErr != nil {
		view.Error = c.fetchErr.Error()
	}

	index := c.crosshair.Index(f)
	view.VolumeHeader = chart.VolumeHeader(f, index)
	view.MA = lo.Map(c.ma, func(line indicator.Line, _ int) MAView {
		return MAView{
			Name:      line.Name,
			Color:     line.Color,
			Legend:    indicator.Legend(line, index),
			Polylines: indicator.Polylines(f, line.Values),
		}
	})

	if crosshair, ok := c.crosshair.View(f); ok {
		view.Crosshair = &crosshair
		if tooltip, ok := chart.Tooltip(f, crosshair.Index); ok {
			view.Tooltip = &tooltip
		}
	}

	return view, nil
}

// SVG renders the current snapshot as an SVG document
func (c *Chart) SVG(ctx context.Context) ([]byte, error) {
	view, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return RenderSVG(view), nil
}
