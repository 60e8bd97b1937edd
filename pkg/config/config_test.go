package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/core"
)

func TestLoad_Defaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, time.Minute, config.Poll.Interval)
	assert.True(t, config.Poll.Session)
	assert.Equal(t, "buntdb", config.Storage.Driver)
	assert.Equal(t, "csv", config.Source.Driver)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, core.DefaultChartSettings(), config.ChartSettings())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candleline.yaml")
	content := `
codes: [SH600519, SZ000001]
chart:
  candle_width: 8
  limit: 60
  ma_lines:
    - name: MA7
      period: 7
      color: "#000000"
poll:
  interval: 30s
  session: false
storage:
  driver: sqlite
  path: lines.db
source:
  routes:
    BTC: binance
telegram:
  enabled: true
  token: abc
  users: [42]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"SH600519", "SZ000001"}, config.Codes)
	assert.Equal(t, 30*time.Second, config.Poll.Interval)
	assert.False(t, config.Poll.Session)
	assert.Equal(t, "sqlite", config.Storage.Driver)
	assert.Equal(t, map[string]string{"btc": "binance"}, config.Source.Routes)

	chart := config.ChartSettings()
	assert.Equal(t, 8.0, chart.CandleWidth)
	assert.Equal(t, 2.0, chart.CandleMargin)
	assert.Equal(t, 60, chart.Limit)
	assert.Equal(t, []core.MALine{{Name: "MA7", Period: 7, Color: "#000000"}}, chart.MALines)

	settings := config.Settings()
	assert.True(t, settings.Telegram.Enabled)
	assert.Equal(t, []int{42}, settings.Telegram.Users)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CANDLELINE_SERVER_PORT", "9090")
	t.Setenv("CANDLELINE_SOURCE_DRIVER", "binance")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "binance", config.Source.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CANDLELINE_STORAGE_DRIVER", "redis")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "candleline.yaml")
	require.NoError(t, WriteDefault(path))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, core.DefaultChartSettings().MALines, config.ChartSettings().MALines)
}

func TestLoad_InvalidRoute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candleline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  routes:\n    eth: kraken\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kraken")
}
