package indicator

import (
	"math"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

func closes(values ...float64) []core.Bar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, len(values))
	for i, v := range values {
		bars[i] = core.Bar{Time: t0.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v}
	}
	return bars
}

func TestMA(t *testing.T) {
	t.Run("three bar window", func(t *testing.T) {
		ma, err := MA(closes(10, 12, 14, 16, 18), 3)
		require.NoError(t, err)
		assert.Equal(t, core.Series[float64]{-1, -1, 12, 14, 16}, ma)
	})

	t.Run("matches the rounded window mean", func(t *testing.T) {
		values := []float64{3.21, 3.35, 3.3, 3.28, 3.41, 3.39, 3.5, 3.47, 3.44, 3.52, 3.61, 3.58}
		for _, period := range []int{1, 2, 5, 7, 12} {
			ma, err := MA(closes(values...), period)
			require.NoError(t, err)
			require.Len(t, ma, len(values))

			for i := range values {
				if i < period-1 {
					assert.Equal(t, Sentinel, ma[i])
					continue
				}

				sum := 0.0
				for j := 0; j < period; j++ {
					sum += values[i-j]
				}
				assert.Equal(t, chart.RoundFixed(sum/float64(period), 2), ma[i], "period %d index %d", period, i)
			}
		}
	})

	t.Run("random series match the window mean", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for series := 0; series < 500; series++ {
			values := make([]float64, 100)
			price := 10 + rng.Float64()*90
			for i := range values {
				price = math.Max(0.01, price+(rng.Float64()-0.5)*2)
				values[i] = math.Round(price*100) / 100
			}

			for _, period := range []int{5, 10, 20, 30} {
				ma, err := MA(closes(values...), period)
				require.NoError(t, err)

				for i := period - 1; i < len(values); i++ {
					sum := 0.0
					for j := 0; j < period; j++ {
						sum += values[i-j]
					}
					want, _ := strconv.ParseFloat(chart.ToFixed(sum/float64(period), 2), 64)
					require.Equal(t, want, ma[i], "series %d period %d index %d", series, period, i)
				}
			}
		}
	})

	t.Run("half cent ties round up", func(t *testing.T) {
		// (1 + 1.25) / 2 is exactly 1.125
		ma, err := MA(closes(1, 1.25), 2)
		require.NoError(t, err)
		assert.Equal(t, core.Series[float64]{-1, 1.13}, ma)
	})

	t.Run("short history is all sentinel", func(t *testing.T) {
		ma, err := MA(closes(1, 2), 5)
		require.NoError(t, err)
		assert.Equal(t, core.Series[float64]{-1, -1}, ma)

		ma, err = MA(nil, 5)
		require.NoError(t, err)
		assert.Empty(t, ma)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := MA(closes(1, 2), 0)
		assert.ErrorIs(t, err, core.ErrInvalidPeriod)
	})

	t.Run("missing close fails", func(t *testing.T) {
		_, err := MA(closes(1, 2, math.NaN(), 4), 2)
		require.ErrorIs(t, err, core.ErrMissingClose)

		var missing *core.MissingCloseError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, 2, missing.Index)
	})
}

func TestEMA(t *testing.T) {
	ema, err := EMA(closes(10, 12, 14, 16, 18), 3)
	require.NoError(t, err)
	assert.Equal(t, core.Series[float64]{-1, -1, 12, 14, 16}, ema)
}

func TestLines(t *testing.T) {
	lines, err := Lines(closes(10, 12, 14, 16, 18), []core.MALine{
		{Name: "MA2", Period: 2, Color: "#fff"},
		{Name: "MA5", Period: 5, Color: "#000"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "MA2: 17.00", Legend(lines[0], 4))
	assert.Equal(t, "MA5: N/A", Legend(lines[1], 3))
	assert.Equal(t, []string{"MA2: N/A", "MA5: N/A"}, Legends(lines, 0))
	assert.Equal(t, "MA5: N/A", Legend(lines[1], 10))

	_, err = Lines(closes(1), []core.MALine{{Name: "bad", Period: -1}})
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}

func TestPolylines(t *testing.T) {
	settings := core.DefaultChartSettings()
	bars := closes(10, 12, 14, 16, 18)
	f, err := chart.NewFrame(bars, core.NewViewport(460, 300, settings), settings)
	require.NoError(t, err)

	parts := Polylines(f, core.Series[float64]{-1, 12, -1, 14, 16})
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 1)
	assert.Len(t, parts[1], 2)
	assert.Equal(t, chart.Point{X: 11, Y: f.PriceToY(12)}, parts[0][0])
	assert.Equal(t, 27.0, parts[1][0].X)
}
