package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar_Validate(t *testing.T) {
	bar := Bar{Time: time.Unix(0, 0), Open: 10, High: 12, Low: 9, Close: 11}
	require.NoError(t, bar.Validate())
	assert.True(t, bar.Rise())

	bar.Low = 10.5
	assert.ErrorIs(t, bar.Validate(), ErrInvalidBar)

	bar.Low, bar.Close = 9, math.NaN()
	assert.ErrorIs(t, bar.Validate(), ErrInvalidBar)
}

func TestValidateBars(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: t0, Open: 1, High: 1, Low: 1, Close: 1},
		{Time: t0.Add(time.Hour), Open: 1, High: 2, Low: 1, Close: 2},
	}
	require.NoError(t, ValidateBars(bars))

	bars[1].Time = t0
	assert.ErrorIs(t, ValidateBars(bars), ErrInvalidBar)
}

func TestPriceRangeOf(t *testing.T) {
	bars := []Bar{
		{Open: 11, High: 12, Low: 10, Close: 11},
		{Open: 15, High: 20, Low: 14, Close: 18},
	}

	r := PriceRangeOf(bars)
	assert.Equal(t, PriceRange{Max: 20, Min: 10}, r)
	assert.False(t, r.Degenerate())
	assert.True(t, r.Contains(15))

	assert.True(t, PriceRangeOf(nil).Degenerate())
	assert.True(t, PriceRangeOf([]Bar{{Open: 5, High: 5, Low: 5, Close: 5}}).Degenerate())
}

func TestLastBars(t *testing.T) {
	bars := make([]Bar, 150)
	for i := range bars {
		bars[i].Close = float64(i)
	}

	last := LastBars(bars, 100)
	require.Len(t, last, 100)
	assert.Equal(t, 50.0, last[0].Close)
	assert.Len(t, LastBars(bars[:10], 100), 10)
}

func TestNewViewport(t *testing.T) {
	vp := NewViewport(860, 400, DefaultChartSettings())
	assert.Equal(t, 100, vp.BarCount)
	assert.True(t, vp.Measured())
	assert.Equal(t, 360.0, vp.ValidHeight())

	assert.False(t, NewViewport(0, 400, DefaultChartSettings()).Measured())
	assert.Zero(t, NewViewport(40, 400, DefaultChartSettings()).BarCount)
}

func TestPeriodDuration(t *testing.T) {
	d, err := PeriodDuration("day")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	d, err = PeriodDuration("60m")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = PeriodDuration("week")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	_, err = PeriodDuration("fortnight")
	assert.Error(t, err)
}
