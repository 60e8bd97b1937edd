package candleline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raykavin/candleline/pkg/annotation"
	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/feed"
	"github.com/raykavin/candleline/pkg/indicator"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/market"
	"github.com/raykavin/candleline/pkg/notification"
	"github.com/raykavin/candleline/pkg/signal"
	"github.com/raykavin/candleline/pkg/storage"
)

// Chart is the session of one (code, period) chart. It polls bars into the
// display window and serialises every gesture on the trend line engine.
type Chart struct {
	mu sync.Mutex

	key      signal.Key
	settings core.ChartSettings
	source   core.BarSource
	storage  core.LineStorage
	refresh  *signal.Feed
	notifier core.Notifier
	recorder core.Recorder
	log      logger.Logger
	anchor   time.Time
	interval time.Duration
	session  *market.Session
	onHover  chart.HoverFunc

	width, height float64
	viewport      core.Viewport
	bars          []core.Bar
	frame         *chart.Frame
	ma            []indicator.Line
	fetchErr      error

	lines     *annotation.LineSet
	engine    *annotation.Engine
	crosshair *chart.Crosshair
	poller    *feed.Poller
}

// NewChart creates the chart of code and period fed by source
func NewChart(code, period string, source core.BarSource, options ...Option) (*Chart, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("chart code is required")
	}

	if _, err := core.PeriodDuration(period); err != nil {
		return nil, err
	}

	c := &Chart{
		key:      signal.NewKey(code, period),
		settings: core.DefaultChartSettings(),
		source:   source,
		recorder: core.NopRecorder{},
		log:      DefaultLog,
		interval: feed.DefaultInterval,
		session:  &market.AShare,
	}

	for _, option := range options {
		option(c)
	}

	c.log = c.log.WithField("chart", c.key.String())

	if c.refresh == nil {
		c.refresh = signal.NewFeed()
	}

	if c.notifier == nil {
		c.notifier = notification.NewLog(c.log)
	}

	if c.storage == nil {
		memory, err := storage.FromMemory(c.log)
		if err != nil {
			return nil, err
		}
		c.storage = memory
	}

	c.lines = annotation.NewLineSet(c.key.Code, c.key.Period, c.storage, c.refresh)
	c.engine = annotation.NewEngine(c.key.Code, c.key.Period, c.storage, c.refresh, c.log,
		annotation.WithNotifier(c.notifier),
		annotation.WithRecorder(c.recorder),
	)
	c.crosshair = chart.NewCrosshair(c.onHover)
	c.poller = feed.NewPoller(c.source, c.key.Code, c.key.Period, c.setBars, c.log,
		feed.WithLimit(c.settings.Limit),
		feed.WithInterval(c.interval),
		feed.WithAnchor(c.anchor),
		feed.WithSession(c.session),
		feed.WithRecorder(c.recorder),
		feed.WithErrorHandler(c.setFetchError),
	)

	if c.width > 0 && c.height > 0 {
		c.viewport = core.NewViewport(c.width, c.height, c.settings)
	}

	return c, nil
}

// Key identifies the chart
func (c *Chart) Key() signal.Key {
	return c.key
}

// Settings returns the chart geometry and palette
func (c *Chart) Settings() core.ChartSettings {
	return c.settings
}

// Refresh returns the refresh signal the chart listens to
func (c *Chart) Refresh() *signal.Feed {
	return c.refresh
}

// Start fetches the first bars and starts polling. The first fetch happens
// whatever the trading session.
func (c *Chart) Start(ctx context.Context) error {
	c.refresh.Start()
	return c.poller.Start(ctx)
}

// Stop ends polling and waits for an in-flight fetch
func (c *Chart) Stop() {
	c.poller.Stop()
}

// Reload fetches the bars now, outside the polling schedule
func (c *Chart) Reload(ctx context.Context) {
	c.poller.Fetch(ctx)
}

// Resize measures the chart box and rebuilds the frame
func (c *Chart) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.viewport.Width == width && c.viewport.Height == height {
		return
	}
	c.viewport = core.NewViewport(width, height, c.settings)
	c.rebuild()
}

// Bars returns the display window
func (c *Chart) Bars() []core.Bar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Bar(nil), c.bars...)
}

// Lines returns the trend lines of the last load
func (c *Chart) Lines(ctx context.Context) ([]*core.TrendLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncLines(ctx); err != nil {
		return nil, err
	}
	return c.lines.Lines(), nil
}

func (c *Chart) setBars(bars []core.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bars = bars
	c.fetchErr = nil
	c.crosshair.Reset()
	c.rebuild()
}

func (c *Chart) setFetchError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchErr = err
}

// rebuild derives the frame of the current bars and viewport. The display
// window holds as many of the last bars as fit in the plot width.
func (c *Chart) rebuild() {
	if !c.viewport.Measured() {
		c.frame, c.ma = nil, nil
		c.engine.SetScene(nil, c.lines.Lines())
		return
	}

	bars := c.bars
	if c.viewport.BarCount > 0 {
		bars = core.LastBars(bars, c.viewport.BarCount)
	}

	frame, err := chart.NewFrame(bars, c.viewport, c.settings)
	if err != nil {
		c.log.WithError(err).Warn("chart frame")
		c.frame, c.ma = nil, nil
		c.engine.SetScene(nil, c.lines.Lines())
		return
	}

	ma, err := indicator.Lines(bars, c.settings.MALines)
	if err != nil {
		c.log.WithError(err).Warn("moving averages skipped")
		ma = nil
	}

	c.frame, c.ma = frame, ma
	c.engine.SetScene(frame, c.lines.Lines())
}

// syncLines reloads the trend lines when the refresh signal moved and hands
// them to the engine
func (c *Chart) syncLines(ctx context.Context) error {
	reloaded, err := c.lines.Refresh(ctx)
	if err != nil {
		return err
	}

	if reloaded {
		c.engine.SetScene(c.frame, c.lines.Lines())
	}
	return nil
}

func (c *Chart) measured() error {
	if c.frame == nil {
		return fmt.Errorf("chart %s: %w", c.key, core.ErrViewportNotMeasured)
	}
	return nil
}
