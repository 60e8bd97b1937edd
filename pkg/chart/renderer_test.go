package chart

import (
	"testing"
	"time"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func bar(day int, open, high, low, close, volume float64) core.Bar {
	return core.Bar{
		Time:   t0.AddDate(0, 0, day),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

func testFrame(t *testing.T, bars []core.Bar) *Frame {
	t.Helper()

	settings := core.DefaultChartSettings()
	f, err := NewFrame(bars, core.NewViewport(460, 300, settings), settings)
	require.NoError(t, err)
	return f
}

func TestNewFrame(t *testing.T) {
	settings := core.DefaultChartSettings()
	_, err := NewFrame(nil, core.NewViewport(0, 300, settings), settings)
	assert.ErrorIs(t, err, core.ErrViewportNotMeasured)

	f := testFrame(t, []core.Bar{bar(0, 11, 12, 10, 11, 1), bar(1, 15, 20, 14, 18, 2)})
	assert.Equal(t, core.PriceRange{Max: 20, Min: 10}, f.Range)
	assert.Equal(t, []float64{3, 11}, f.CoordinateX)
	assert.Equal(t, 50, f.Viewport.BarCount)
}

func TestCandles(t *testing.T) {
	f := testFrame(t, []core.Bar{
		bar(0, 12, 20, 10, 18, 0),
		bar(1, 18, 18, 12, 14, 0),
		bar(2, 15, 15, 15, 15, 0),
	})

	candles := Candles(f)
	require.Len(t, candles, 3)

	rise := candles[0]
	assert.True(t, rise.Rise)
	assert.Equal(t, "#CA4A47", rise.Color)
	assert.Equal(t, 20.0, rise.WickTop)
	assert.Equal(t, 280.0, rise.WickBottom)
	assert.Equal(t, 0.0, rise.BodyX)
	assert.Equal(t, 6.0, rise.BodyWidth)
	assert.InDelta(t, f.PriceToY(18), rise.BodyY, 1e-9)
	assert.InDelta(t, f.PriceToY(12)-f.PriceToY(18), rise.BodyHeight, 1e-9)

	fall := candles[1]
	assert.False(t, fall.Rise)
	assert.Equal(t, "#56A870", fall.Color)
	assert.InDelta(t, f.PriceToY(18), fall.BodyY, 1e-9)

	flat := candles[2]
	assert.Equal(t, 1.0, flat.BodyHeight)
	assert.Equal(t, 150.0, flat.BodyY)
}

func TestVolumes(t *testing.T) {
	f := testFrame(t, []core.Bar{
		bar(0, 1, 2, 1, 2, 500),
		bar(1, 2, 2, 1, 1, 1000),
		bar(2, 1, 1, 1, 1, 0),
	})

	volumes := Volumes(f, 100)
	require.Len(t, volumes, 2)

	assert.Equal(t, 0, volumes[0].Index)
	assert.InDelta(t, 45, volumes[0].Height, 1e-9)
	assert.InDelta(t, 55, volumes[0].Y, 1e-9)

	assert.Equal(t, 1, volumes[1].Index)
	assert.InDelta(t, 90, volumes[1].Height, 1e-9)
	assert.InDelta(t, 10, volumes[1].Y, 1e-9)
	assert.Equal(t, "#56A870", volumes[1].Color)

	assert.Empty(t, Volumes(testFrame(t, []core.Bar{bar(0, 1, 1, 1, 1, 0)}), 100))
}

func TestPriceGrid(t *testing.T) {
	f := testFrame(t, []core.Bar{bar(0, 11, 20, 10, 18, 0)})

	grid := PriceGrid(f)
	require.Len(t, grid, 6)
	assert.Equal(t, GridLine{Y: 20, X2: 400, Label: "20"}, grid[0])
	assert.Equal(t, GridLine{Y: 72, X2: 400, Label: "18"}, grid[1])
	assert.Equal(t, GridLine{Y: 280, X2: 400, Label: "10"}, grid[5])
}

func TestFrame_TimeToX(t *testing.T) {
	f := testFrame(t, []core.Bar{
		bar(0, 1, 1, 1, 1, 0),
		bar(1, 1, 1, 1, 1, 0),
		bar(3, 1, 1, 1, 1, 0),
	})

	day := int64(24 * time.Hour / time.Millisecond)
	first := f.Bars[0].Timestamp()

	assert.Equal(t, 3.0, f.TimeToX(first))
	assert.Equal(t, 19.0, f.TimeToX(f.Bars[2].Timestamp()))
	assert.InDelta(t, 15.0, f.TimeToX(first+2*day), 1e-9)
	assert.InDelta(t, -5.0, f.TimeToX(first-day), 1e-9)
	assert.InDelta(t, 23.0, f.TimeToX(first+4*day), 1e-9)
}

func TestFrame_DomainPoint(t *testing.T) {
	f := testFrame(t, []core.Bar{bar(0, 11, 20, 10, 18, 0), bar(1, 15, 16, 12, 14, 0)})

	ms, price, ok := f.DomainPoint(12, 150)
	require.True(t, ok)
	assert.Equal(t, f.Bars[1].Timestamp(), ms)
	assert.Equal(t, 15.0, price)

	empty := testFrame(t, nil)
	_, _, ok = empty.DomainPoint(12, 150)
	assert.False(t, ok)
}
