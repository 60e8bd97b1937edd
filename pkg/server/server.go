// Package server hosts charts over HTTP: the SVG and JSON views, the gesture
// and trend line APIs and the websocket that announces line changes
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/raykavin/candleline"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/signal"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// ChartFactory opens the chart session of (code, period)
type ChartFactory func(code, period string) (*candleline.Chart, error)

// Server serves every chart opened through its factory
type Server struct {
	mu     sync.Mutex
	charts map[signal.Key]*candleline.Chart
	open   ChartFactory

	storage core.LineStorage
	minutes core.BarSource
	refresh *signal.Feed
	hub     *hub
	metrics http.Handler
	log     logger.Logger

	port          int
	debug         bool
	codes         []string
	period        string
	scriptContent string
	indexHTML     *template.Template
	ctx           context.Context
	started       time.Time
}

// Option configures a Server
type Option func(*Server)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDebug disables script minification
func WithDebug() Option {
	return func(s *Server) {
		s.debug = true
	}
}

// WithCodes lists the codes offered on the index page
func WithCodes(codes ...string) Option {
	return func(s *Server) {
		s.codes = append(s.codes, codes...)
	}
}

// WithDefaultPeriod sets the period used when a request names none
func WithDefaultPeriod(period string) Option {
	return func(s *Server) {
		s.period = period
	}
}

// WithMetrics exposes handler on /metrics
func WithMetrics(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithMinuteSource serves intraday charts of the one minute bars of source
func WithMinuteSource(source core.BarSource) Option {
	return func(s *Server) {
		s.minutes = source
	}
}

// NewServer creates the HTTP host. Trend line writes go to storage and are
// announced on refresh, which the server also forwards to websocket clients.
func NewServer(open ChartFactory, storage core.LineStorage, refresh *signal.Feed, log logger.Logger, options ...Option) (*Server, error) {
	s := &Server{
		charts:  make(map[signal.Key]*candleline.Chart),
		open:    open,
		storage: storage,
		refresh: refresh,
		log:     log,
		port:    8080,
		period:  "1d",
		ctx:     context.Background(),
		started: time.Now(),
	}

	for _, option := range options {
		option(s)
	}
	sort.Strings(s.codes)

	var err error
	s.indexHTML, err = template.ParseFS(staticFiles, "assets/chart.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart template: %w", err)
	}

	chartJS, err := staticFiles.ReadFile("assets/chart.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read chart.js: %w", err)
	}

	transpiled := api.Transform(string(chartJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !s.debug,
		MinifyIdentifiers: !s.debug,
		MinifyWhitespace:  !s.debug,
	})

	if len(transpiled.Errors) > 0 {
		return nil, fmt.Errorf("chart script failed with: %v", transpiled.Errors)
	}
	s.scriptContent = string(transpiled.Code)

	s.hub = newHub(log, refresh)
	refresh.Start()

	return s, nil
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /assets/chart.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, s.scriptContent)
	})
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /chart.svg", s.handleSVG)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/gesture", s.handleGesture)
	mux.HandleFunc("GET /api/lines", s.handleLines)
	mux.HandleFunc("POST /api/lines", s.handleAddLine)
	mux.HandleFunc("DELETE /api/lines/{id}", s.handleDeleteLine)
	if s.minutes != nil {
		mux.HandleFunc("GET /minute.svg", s.handleMinuteSVG)
		mux.HandleFunc("GET /api/minute", s.handleMinute)
	}
	mux.HandleFunc("GET /ws", s.hub.handleWebSocket)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			s.log.WithError(err).Warn("chart server shutdown")
		}
	}()

	s.log.Infof("Chart available at http://localhost:%d", s.port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops every chart session and disconnects websocket clients
func (s *Server) Close() {
	s.mu.Lock()
	charts := s.charts
	s.charts = make(map[signal.Key]*candleline.Chart)
	s.mu.Unlock()

	for _, c := range charts {
		c.Stop()
	}
	s.hub.close()
}

// chart returns the session of (code, period), opening and starting it on first use
func (s *Server) chart(code, period string) (*candleline.Chart, error) {
	if period == "" {
		period = s.period
	}
	key := signal.NewKey(code, period)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.charts[key]; ok {
		return c, nil
	}

	c, err := s.open(key.Code, key.Period)
	if err != nil {
		return nil, err
	}

	if err := c.Start(s.ctx); err != nil {
		return nil, err
	}

	s.charts[key] = c
	s.hub.watch(key)
	return c, nil
}
