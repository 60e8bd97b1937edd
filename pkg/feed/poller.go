package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/robfig/cron/v3"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/market"
)

const (
	DefaultInterval = time.Minute
	DefaultLimit    = 100
)

var ErrAlreadyStarted = errors.New("poller already started")

// BarsHandler receives every successful fetch. The slice replaces whatever
// the handler held before.
type BarsHandler func(bars []core.Bar)

// Poller re-fetches the bars of one chart on a fixed interval. A fetch runs
// as soon as it starts; later ticks only fetch while the market session is
// open and no historical anchor is set. Stop cancels it deterministically.
type Poller struct {
	source   core.BarSource
	code     string
	period   string
	anchor   time.Time
	limit    int
	interval time.Duration
	session  *market.Session
	onBars   BarsHandler
	onError  func(error)
	recorder core.Recorder
	log      logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	backoff *backoff.Backoff
	retryAt time.Time
}

// Option configures a Poller
type Option func(*Poller)

// WithInterval sets the re-fetch interval, rounded by the scheduler to whole seconds
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithAnchor pins the chart to a historical end time, which disables re-fetching
func WithAnchor(anchor time.Time) Option {
	return func(p *Poller) {
		p.anchor = anchor
	}
}

// WithLimit sets how many bars are requested and kept
func WithLimit(limit int) Option {
	return func(p *Poller) {
		p.limit = limit
	}
}

// WithSession gates ticks by a market session; nil polls around the clock
func WithSession(session *market.Session) Option {
	return func(p *Poller) {
		p.session = session
	}
}

// WithErrorHandler is told about every failed fetch
func WithErrorHandler(fn func(error)) Option {
	return func(p *Poller) {
		p.onError = fn
	}
}

// WithRecorder observes every fetch
func WithRecorder(recorder core.Recorder) Option {
	return func(p *Poller) {
		p.recorder = recorder
	}
}

// WithClock replaces the wall clock used by the session gate and the backoff
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

func NewPoller(source core.BarSource, code, period string, onBars BarsHandler, log logger.Logger, options ...Option) *Poller {
	p := &Poller{
		source:   source,
		code:     code,
		period:   period,
		limit:    DefaultLimit,
		interval: DefaultInterval,
		session:  &market.AShare,
		onBars:   onBars,
		onError:  func(error) {},
		recorder: core.NopRecorder{},
		log:      log.WithField("code", code).WithField("period", period),
		now:      time.Now,
		backoff: &backoff.Backoff{
			Min:    5 * time.Second,
			Max:    5 * time.Minute,
			Factor: 2,
		},
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// Start fetches once and, unless the chart is anchored, schedules the ticks
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cron != nil {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}

	ctx, p.cancel = context.WithCancel(ctx)
	c := cron.New(
		cron.WithLocation(market.Shanghai),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(p.log))),
	)
	if p.anchor.IsZero() {
		c.Schedule(cron.Every(p.interval), cron.FuncJob(func() { p.Tick(ctx) }))
	}
	p.cron = c
	c.Start()
	p.mu.Unlock()

	p.Fetch(ctx)
	p.log.Debugf("polling every %s", p.interval)
	return nil
}

// Stop cancels the in-flight fetch and waits for the running tick to return
func (p *Poller) Stop() {
	p.mu.Lock()
	c, cancel := p.cron, p.cancel
	p.cron, p.cancel = nil, nil
	p.mu.Unlock()

	if c == nil {
		return
	}

	cancel()
	<-c.Stop().Done()
	p.log.Debug("polling stopped")
}

// Tick is one scheduled run: it fetches when the gate is open and the
// backoff of the last failure has elapsed. It reports whether it fetched.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.anchor.IsZero() {
		return false
	}

	now := p.now()
	if p.session != nil && !p.session.IsOpen(now) {
		return false
	}

	p.mu.Lock()
	waiting := now.Before(p.retryAt)
	p.mu.Unlock()
	if waiting {
		return false
	}

	p.Fetch(ctx)
	return true
}

// Fetch requests the bars right away and hands the display window to the handler
func (p *Poller) Fetch(ctx context.Context) {
	bars, err := p.fetch(ctx)
	p.recorder.BarsFetched(p.code, p.period, len(bars), err)

	p.mu.Lock()
	if err != nil {
		p.retryAt = p.now().Add(p.backoff.Duration())
	} else {
		p.backoff.Reset()
		p.retryAt = time.Time{}
	}
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.WithError(err).Warn("fetching bars failed")
		p.onError(err)
		return
	}

	p.onBars(bars)
}

func (p *Poller) fetch(ctx context.Context) ([]core.Bar, error) {
	bars, err := p.source.Bars(ctx, p.code, p.period, p.anchor, p.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", p.code, p.period, err)
	}

	if err := core.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", p.code, p.period, err)
	}

	return core.LastBars(bars, p.limit), nil
}
