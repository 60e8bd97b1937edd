package candleline

import (
	"time"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/market"
	"github.com/raykavin/candleline/pkg/signal"
)

// Option is a functional option for configuring a Chart
type Option func(*Chart)

// WithSettings sets the chart geometry and palette, core.DefaultChartSettings by default
func WithSettings(settings core.ChartSettings) Option {
	return func(c *Chart) {
		c.settings = settings
	}
}

// WithStorage sets the trend line storage, an in-memory BuntDB by default
func WithStorage(storage core.LineStorage) Option {
	return func(c *Chart) {
		c.storage = storage
	}
}

// WithRefresh shares the refresh signal between charts, storage writers and hosts
func WithRefresh(refresh *signal.Feed) Option {
	return func(c *Chart) {
		c.refresh = refresh
	}
}

// WithNotifier registers the notifier told about failed trend line writes
func WithNotifier(notifier core.Notifier) Option {
	return func(c *Chart) {
		c.notifier = notifier
	}
}

// WithRecorder sets the observer of fetches and trend line writes
func WithRecorder(recorder core.Recorder) Option {
	return func(c *Chart) {
		c.recorder = recorder
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Chart) {
		c.log = log
	}
}

// WithAnchor shows the bars ending at anchor. Anchored charts are fetched once and never polled.
func WithAnchor(anchor time.Time) Option {
	return func(c *Chart) {
		c.anchor = anchor
	}
}

// WithInterval sets the polling cadence
func WithInterval(interval time.Duration) Option {
	return func(c *Chart) {
		c.interval = interval
	}
}

// WithSession gates polling on a trading session; nil polls at any time
func WithSession(session *market.Session) Option {
	return func(c *Chart) {
		c.session = session
	}
}

// WithViewport measures the chart box up front
func WithViewport(width, height float64) Option {
	return func(c *Chart) {
		c.width, c.height = width, height
	}
}

// WithHover registers the callback told about the hovered bar
func WithHover(onHover chart.HoverFunc) Option {
	return func(c *Chart) {
		c.onHover = onHover
	}
}
