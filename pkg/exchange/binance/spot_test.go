package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zlog "github.com/raykavin/candleline/pkg/logger/zerolog"
)

func kline(openTime int64, open, high, low, close string) string {
	return fmt.Sprintf(`[%d,%q,%q,%q,%q,"100.5",%d,"0",1,"0","0","0"]`, openTime, open, high, low, close, openTime+59999)
}

func klineServer(t *testing.T, klines ...string) (*httptest.Server, *http.Request) {
	t.Helper()

	var last http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "["+strings.Join(klines, ",")+"]")
	}))
	t.Cleanup(server.Close)
	return server, &last
}

func TestInterval(t *testing.T) {
	interval, err := Interval("day")
	require.NoError(t, err)
	assert.Equal(t, "1d", interval)

	interval, err = Interval("60m")
	require.NoError(t, err)
	assert.Equal(t, "1h", interval)

	interval, err = Interval("month")
	require.NoError(t, err)
	assert.Equal(t, "1M", interval)

	_, err = Interval("7m")
	assert.ErrorIs(t, err, ErrUnsupportedPeriod)
}

func TestSource_LiveBars(t *testing.T) {
	server, request := klineServer(t,
		kline(60000, "9", "10", "8", "10"),
		kline(120000, "10", "12", "9", "11"),
		kline(180000, "11", "13", "10", "12"),
		kline(240000, "12", "12", "11", "11.5"),
	)

	source := NewSource(zlog.Discard(), WithBaseURL(server.URL))
	bars, err := source.Bars(context.Background(), "btc/usdt", "1m", time.Time{}, 2)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", request.URL.Query().Get("symbol"))
	assert.Equal(t, "1m", request.URL.Query().Get("interval"))
	assert.Equal(t, "4", request.URL.Query().Get("limit"))

	require.Len(t, bars, 2)
	assert.Equal(t, int64(120000), bars[0].Timestamp())
	assert.Equal(t, 11.0, bars[0].Close)
	assert.InDelta(t, 10, bars[0].ChangePercent, 1e-9)
	assert.Equal(t, 100.5, bars[1].Volume)
	assert.InDelta(t, 100.0/11, bars[1].ChangePercent, 1e-9)
}

func TestSource_AnchoredBars(t *testing.T) {
	server, request := klineServer(t,
		kline(60000, "9", "10", "8", "10"),
		kline(120000, "10", "12", "9", "11"),
	)

	source := NewSource(zlog.Discard(), WithBaseURL(server.URL))
	bars, err := source.Bars(context.Background(), "BTCUSDT", "1m", time.UnixMilli(120000), 5)
	require.NoError(t, err)

	assert.Equal(t, "120000", request.URL.Query().Get("endTime"))
	require.Len(t, bars, 2)
	assert.InDelta(t, 100.0/9, bars[0].ChangePercent, 1e-9)
}

func TestSource_BadPrice(t *testing.T) {
	server, _ := klineServer(t, kline(60000, "x", "10", "8", "10"), kline(120000, "10", "12", "9", "11"))

	source := NewSource(zlog.Discard(), WithBaseURL(server.URL))
	_, err := source.Bars(context.Background(), "BTCUSDT", "1m", time.Time{}, 5)
	assert.ErrorContains(t, err, "parse kline open")
}
