package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/core"
)

func TestLimitRange(t *testing.T) {
	tests := map[string]float64{
		"sh600519":  10,
		"SZ000001":  10,
		"sz300750":  20,
		"sz301001":  20,
		"sh688981":  20,
		"SH689009":  20,
		"sz830799":  30,
		"sh870204":  30,
		"sz889999":  30,
		" sz300750": 20,
		"600519":    10,
		"bj830799":  10,
		"sh60051":   10,
	}

	for code, want := range tests {
		assert.Equal(t, want, LimitRange(code), code)
	}
}

func TestMinutePoints(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	bars := []core.Bar{
		{Time: t0, Open: 20, Close: 20.2},
		{Time: t0.Add(time.Minute), Open: 20.2, Close: 19.8},
	}

	points := MinutePoints(bars, 20)
	require.Len(t, points, 2)
	assert.Equal(t, MinutePoint{Time: t0, Price: 20.2, Percent: 1}, points[0])
	assert.Equal(t, -1.0, points[1].Percent)

	// without a previous close the first open is the reference
	points = MinutePoints(bars, 0)
	assert.Equal(t, 1.0, points[0].Percent)

	assert.Empty(t, MinutePoints(nil, 20))
}

func TestMinuteFrame(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	points := make([]MinutePoint, MinutesPerDay)
	for i := range points {
		points[len(points)-1-i] = MinutePoint{Time: t0.Add(time.Duration(i) * time.Minute), Percent: float64(i%21) - 10}
	}

	f := NewMinuteFrame(600, 300, "sh600519", points)
	assert.Equal(t, 10.0, f.Limit)
	assert.True(t, f.Points[0].Time.Equal(t0), "points are sorted by time")

	assert.Equal(t, 30.0, f.XByIndex(0))
	assert.Equal(t, 550.0, f.XByIndex(MinutesPerDay-1))
	assert.Equal(t, 10.0, f.YByPercent(10))
	assert.Equal(t, 255.0, f.YByPercent(-10))
	assert.Equal(t, 132.5, f.YByPercent(0))

	path := f.Path()
	require.Len(t, path, MinutesPerDay)
	assert.Equal(t, Point{X: 30, Y: 255}, path[0])

	assert.Equal(t, ColorMinuteFall, f.Color())
	f.Points[len(f.Points)-1].Percent = 0
	assert.Equal(t, ColorMinuteRise, f.Color())
}

func TestMinuteFrame_PartialDay(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

	single := NewMinuteFrame(600, 300, "sh600519", []MinutePoint{{Time: t0, Percent: 2}})
	assert.Equal(t, 30.0, single.XByIndex(0))

	empty := NewMinuteFrame(600, 300, "sh600519", nil)
	assert.Empty(t, empty.Path())
	assert.Equal(t, ColorMinuteRise, empty.Color())
}

func TestMinuteFrame_Grid(t *testing.T) {
	f := NewMinuteFrame(600, 300, "sz300750", nil)

	grid := f.PercentGrid()
	require.Len(t, grid, 41)
	assert.Equal(t, MinuteGridLine{Y: 10, Percent: 20, Label: "20%"}, grid[0])
	assert.Empty(t, grid[1].Label)
	assert.Equal(t, MinuteGridLine{Y: 132.5, Percent: 0, Label: "0%", Zero: true}, grid[20])
	assert.Equal(t, "-20%", grid[40].Label)
	assert.Equal(t, 255.0, grid[40].Y)

	ticks := f.TimeTicks()
	require.Len(t, ticks, 9)
	assert.Equal(t, TimeTick{X: 30, Label: "9:30"}, ticks[0])
	assert.Equal(t, TimeTick{X: 290, Label: "11:30"}, ticks[4])
	assert.Equal(t, TimeTick{X: 550, Label: "15:00"}, ticks[8])
}
