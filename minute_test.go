package candleline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/exchange"
	"github.com/raykavin/candleline/pkg/market"
)

func minuteSource(minutes, daily []core.Bar, dailyErr error, anchors *[]time.Time) core.BarSource {
	return exchange.SourceFunc(func(_ context.Context, _, period string, anchor time.Time, _ int) ([]core.Bar, error) {
		if period == "1d" {
			*anchors = append(*anchors, anchor)
			return daily, dailyErr
		}
		return minutes, nil
	})
}

func TestLoadMinutes(t *testing.T) {
	yesterday := time.Date(2024, 3, 4, 14, 59, 0, 0, market.Shanghai)
	today := time.Date(2024, 3, 5, 9, 30, 0, 0, market.Shanghai)
	minutes := []core.Bar{
		{Time: yesterday, Open: 9, Close: 9},
		{Time: today, Open: 10, Close: 10.1},
		{Time: today.Add(time.Minute), Open: 10.1, Close: 9.9},
	}
	daily := []core.Bar{{Time: time.Date(2024, 3, 4, 0, 0, 0, 0, market.Shanghai), Close: 10}}

	var anchors []time.Time
	points, err := LoadMinutes(context.Background(), minuteSource(minutes, daily, nil, &anchors), "sh600519", time.Time{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].Percent)
	assert.Equal(t, -1.0, points[1].Percent)

	require.Len(t, anchors, 1)
	assert.True(t, anchors[0].Before(time.Date(2024, 3, 5, 0, 0, 0, 0, market.Shanghai)))
}

func TestLoadMinutes_WithoutDailyClose(t *testing.T) {
	today := time.Date(2024, 3, 5, 9, 30, 0, 0, market.Shanghai)
	minutes := []core.Bar{{Time: today, Open: 10, Close: 10.5}}

	var anchors []time.Time
	points, err := LoadMinutes(context.Background(), minuteSource(minutes, nil, errors.New("no daily"), &anchors), "sh600519", time.Time{})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 5.0, points[0].Percent)

	points, err = LoadMinutes(context.Background(), minuteSource(nil, nil, nil, &anchors), "sh600519", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestRenderMinuteSVG(t *testing.T) {
	today := time.Date(2024, 3, 5, 9, 30, 0, 0, market.Shanghai)
	bars := []core.Bar{
		{Time: today, Open: 10, Close: 10.2},
		{Time: today.Add(time.Minute), Open: 10.2, Close: 10.3},
	}

	var anchors []time.Time
	source := minuteSource(bars, []core.Bar{{Time: today.AddDate(0, 0, -1), Close: 10}}, nil, &anchors)
	points, err := LoadMinutes(context.Background(), source, "sh688981", time.Time{})
	require.NoError(t, err)

	view := NewMinuteView(600, 300, "sh688981", points)
	assert.Equal(t, 20.0, view.Limit)
	assert.Len(t, view.Grid, 41)

	svg := string(RenderMinuteSVG(view))
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "<polyline")
	assert.Contains(t, svg, ">15:00<")
	assert.Contains(t, svg, ">-20%<")
	assert.Contains(t, svg, `stroke="#52c41a"`)
}
