package exchange

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/core"
)

const dailyCSV = `time,open,close,low,high,volume,turnoverRate
2024-03-04,10,11,9.5,11.5,1000,0.5
2024-03-05,11,12,10.5,12.5,2000,0.6
2024-03-06,12,11,10.8,12.2,1500,0.4
2024-03-11,11,13,11,13.5,3000,0.9
2024-03-12,13,12.5,12,13.2,2500,0.7
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestCSVSource_Bars(t *testing.T) {
	source, err := NewCSVSource(CodeFeed{Code: "sh600519", File: writeCSV(t, dailyCSV), Period: "1d"})
	require.NoError(t, err)

	ctx := context.Background()
	bars, err := source.Bars(ctx, "SH600519", "day", time.Time{}, 3)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, "2024-03-06", bars[0].Time.Format("2006-01-02"))
	assert.Equal(t, 0.4, bars[0].TurnoverRate)
	assert.InDelta(t, (11.0-12)/12*100, bars[0].ChangePercent, 1e-9)

	anchor := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	bars, err = source.Bars(ctx, "SH600519", "1d", anchor, 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 0.0, bars[0].ChangePercent)
	assert.Equal(t, 12.0, bars[1].Close)

	_, err = source.Bars(ctx, "SZ000001", "1d", time.Time{}, 10)
	assert.ErrorIs(t, err, ErrUnknownSeries)
}

func TestCSVSource_DefaultHeaders(t *testing.T) {
	file := writeCSV(t, "1709510400,10,11,9,12,100\n1709596800,11,10,9.5,11.5,200\n")
	source, err := NewCSVSource(CodeFeed{Code: "BTCUSDT", File: file, Period: "1d"})
	require.NoError(t, err)

	bars, err := source.Bars(context.Background(), "BTCUSDT", "1d", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, core.Bar{
		Time:   time.Unix(1709510400, 0).UTC(),
		Open:   10,
		Close:  11,
		Low:    9,
		High:   12,
		Volume: 100,
	}, bars[0])
}

func TestCSVSource_RejectsInvalidFile(t *testing.T) {
	_, err := NewCSVSource(CodeFeed{Code: "A", File: writeCSV(t, "time,open,close,low,high,volume\n2024-03-04,10,11,10.5,12,1\n"), Period: "1d"})
	assert.ErrorIs(t, err, core.ErrInvalidBar)

	_, err = NewCSVSource(CodeFeed{Code: "A", File: writeCSV(t, "time,open,close\n2024-03-04,10,11\n"), Period: "1d"})
	assert.ErrorContains(t, err, "missing low column")
}

func TestResample_Weekly(t *testing.T) {
	source, err := NewCSVSource(CodeFeed{Code: "SH600519", File: writeCSV(t, dailyCSV), Period: "1d", Resample: []string{"week"}})
	require.NoError(t, err)

	weeks, err := source.Bars(context.Background(), "SH600519", "week", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	first := weeks[0]
	assert.Equal(t, 10.0, first.Open)
	assert.Equal(t, 11.0, first.Close)
	assert.Equal(t, 12.5, first.High)
	assert.Equal(t, 9.5, first.Low)
	assert.Equal(t, 4500.0, first.Volume)
	assert.InDelta(t, 1.5, first.TurnoverRate, 1e-9)

	second := weeks[1]
	assert.Equal(t, "2024-03-11", second.Time.Format("2006-01-02"))
	assert.Equal(t, 12.5, second.Close)
	assert.InDelta(t, (12.5-11.0)/11*100, second.ChangePercent, 1e-9)
}

func TestRouter(t *testing.T) {
	csv := SourceFunc(func(context.Context, string, string, time.Time, int) ([]core.Bar, error) {
		return []core.Bar{{Close: 1}}, nil
	})
	crypto := SourceFunc(func(context.Context, string, string, time.Time, int) ([]core.Bar, error) {
		return []core.Bar{{Close: 2}}, nil
	})

	router := NewRouter(nil).Route("sh", csv).Route("BTC", crypto)

	bars, err := router.Bars(context.Background(), "sh600519", "day", time.Time{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, bars[0].Close)

	bars, err = router.Bars(context.Background(), "BTCUSDT", "day", time.Time{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, bars[0].Close)

	_, err = router.Bars(context.Background(), "SZ000001", "day", time.Time{}, 1)
	assert.ErrorIs(t, err, ErrUnknownSeries)
}

func TestFeedsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SH600519-1d.csv"), []byte(dailyCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	feeds, err := FeedsFromDir(dir, []string{"1w"}, time.UTC)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "SH600519", feeds[0].Code)
	assert.Equal(t, "1d", feeds[0].Period)

	source, err := NewCSVSource(feeds...)
	require.NoError(t, err)
	bars, err := source.Bars(context.Background(), "SH600519", "week", time.Time{}, 10)
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte(dailyCSV), 0o600))
	_, err = FeedsFromDir(dir, nil, time.UTC)
	assert.Error(t, err)
}
