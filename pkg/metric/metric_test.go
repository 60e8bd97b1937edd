package metric

import (
	"errors"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/raykavin/candleline/pkg/core"
)

func closes(values ...float64) []core.Bar {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, len(values))
	for i, v := range values {
		bars[i] = core.Bar{Time: start.AddDate(0, 0, i), Open: v, High: v + 1, Low: v - 1, Close: v}
	}
	return bars
}

func TestBootstrap(t *testing.T) {
	mean := func(v []float64) float64 { return stat.Mean(v, nil) }

	constant := Bootstrap([]float64{2, 2, 2, 2}, mean, 200, 0.95, rand.New(rand.NewSource(1)))
	assert.Equal(t, BootstrapInterval{Lower: 2, Upper: 2, Mean: 2}, constant)

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	interval := Bootstrap(values, mean, 1000, 0.9, rand.New(rand.NewSource(7)))
	assert.Less(t, interval.Lower, 5.5)
	assert.Greater(t, interval.Upper, 5.5)
	assert.InDelta(t, 5.5, interval.Mean, 0.5)
	assert.Greater(t, interval.StdDev, 0.0)

	assert.Equal(t, BootstrapInterval{}, Bootstrap(nil, mean, 10, 0.95, rand.New(rand.NewSource(1))))
}

func TestSummarize(t *testing.T) {
	summary := Summarize(closes(10, 12, 9, 11), 100, rand.New(rand.NewSource(3)))

	assert.Equal(t, 4, summary.Bars)
	assert.Equal(t, 10.0, summary.First)
	assert.Equal(t, 11.0, summary.Last)
	assert.InDelta(t, 10, summary.Change, 1e-9)
	assert.Equal(t, 13.0, summary.High)
	assert.Equal(t, 8.0, summary.Low)
	assert.InDelta(t, 25, summary.MaxDrawdown, 1e-9)
	require.Len(t, summary.Returns, 3)
	assert.InDelta(t, 20, summary.Returns[0], 1e-9)
	assert.InDelta(t, -25, summary.Returns[1], 1e-9)
	assert.Greater(t, summary.StdDev, 0.0)
	assert.LessOrEqual(t, summary.Interval.Lower, summary.Interval.Upper)

	assert.Equal(t, Summary{}, Summarize(nil, 100, rand.New(rand.NewSource(3))))

	single := Summarize(closes(5), 100, rand.New(rand.NewSource(3)))
	assert.Empty(t, single.Returns)
	assert.Zero(t, single.StdDev)
}

func TestRecorder(t *testing.T) {
	recorder := NewRecorder()

	recorder.BarsFetched("SH600519", "day", 100, nil)
	recorder.BarsFetched("SH600519", "day", 0, errors.New("timeout"))
	recorder.LineSaved(core.LineSegment, nil)
	recorder.LineDeleted(errors.New("not found"))

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.BarFetches.WithLabelValues("SH600519", "day", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.BarFetches.WithLabelValues("SH600519", "day", "error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(recorder.BarCount.WithLabelValues("SH600519", "day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.LineSaves.WithLabelValues("segment", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.LineDeletes.WithLabelValues("error")))

	response := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(response, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, response.Body.String(), "candleline_trend_line_saves_total")
}
