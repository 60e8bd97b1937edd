package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raykavin/candleline/pkg/core"
)

// Recorder implements core.Recorder with Prometheus collectors on its own registry
type Recorder struct {
	registry *prometheus.Registry

	BarFetches  *prometheus.CounterVec // labels: code, period, result
	BarCount    *prometheus.GaugeVec   // labels: code, period
	LineSaves   *prometheus.CounterVec // labels: kind, result
	LineDeletes *prometheus.CounterVec // labels: result
}

// NewRecorder registers and returns the chart collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		BarFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candleline_bar_fetches_total",
			Help: "Bar fetches by chart and outcome",
		}, []string{"code", "period", "result"}),
		BarCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "candleline_bars",
			Help: "Bars held by the last successful fetch of a chart",
		}, []string{"code", "period"}),
		LineSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candleline_trend_line_saves_total",
			Help: "Trend line saves by kind and outcome",
		}, []string{"kind", "result"}),
		LineDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candleline_trend_line_deletes_total",
			Help: "Trend line deletes by outcome",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.BarFetches, r.BarCount, r.LineSaves, r.LineDeletes)
	return r
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Recorder) BarsFetched(code, period string, count int, err error) {
	r.BarFetches.WithLabelValues(code, period, result(err)).Inc()
	if err == nil {
		r.BarCount.WithLabelValues(code, period).Set(float64(count))
	}
}

func (r *Recorder) LineSaved(kind core.LineKind, err error) {
	r.LineSaves.WithLabelValues(string(kind), result(err)).Inc()
}

func (r *Recorder) LineDeleted(err error) {
	r.LineDeletes.WithLabelValues(result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
