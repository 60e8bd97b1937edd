// Package config handles application configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/raykavin/candleline/pkg/core"
)

const (
	EnvPrefix         = "CANDLELINE"
	DefaultConfigPath = "./candleline.yaml"
)

// Config is the whole application configuration
type Config struct {
	Codes    []string       `mapstructure:"codes"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Poll     PollConfig     `mapstructure:"poll"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

// ChartConfig holds the chart geometry and palette
type ChartConfig struct {
	Width          float64        `mapstructure:"width"`
	Height         float64        `mapstructure:"height"`
	Padding        float64        `mapstructure:"padding"`
	RightMargin    float64        `mapstructure:"right_margin"`
	CandleWidth    float64        `mapstructure:"candle_width"`
	CandleMargin   float64        `mapstructure:"candle_margin"`
	RiseColor      string         `mapstructure:"rise_color"`
	FallColor      string         `mapstructure:"fall_color"`
	VolumeHeight   float64        `mapstructure:"volume_height"`
	VolumeHeadroom float64        `mapstructure:"volume_headroom"`
	MALines        []MALineConfig `mapstructure:"ma_lines"`
	Limit          int            `mapstructure:"limit"`
}

type MALineConfig struct {
	Name   string `mapstructure:"name"`
	Period int    `mapstructure:"period"`
	Color  string `mapstructure:"color"`
}

// PollConfig holds the bar re-fetch cadence
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Session  bool          `mapstructure:"session"`
}

// StorageConfig selects the trend line store
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

// SourceConfig selects where bars come from. CSV files are named CODE-period.csv.
// Routes send the codes starting with a prefix to another driver, btc: binance for instance.
type SourceConfig struct {
	Driver    string            `mapstructure:"driver"`
	Routes    map[string]string `mapstructure:"routes"`
	Dir       string            `mapstructure:"dir"`
	Resample  []string          `mapstructure:"resample"`
	APIKey    string            `mapstructure:"api_key"`
	APISecret string            `mapstructure:"api_secret"`
	BaseURL   string            `mapstructure:"base_url"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	Users   []int  `mapstructure:"users"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Backend string `mapstructure:"backend"`
	Colored bool   `mapstructure:"colored"`
	JSON    bool   `mapstructure:"json"`
}

func setDefaults(v *viper.Viper) {
	chart := core.DefaultChartSettings()

	v.SetDefault("codes", []string{})
	v.SetDefault("chart.width", 860)
	v.SetDefault("chart.height", 400)
	v.SetDefault("chart.padding", chart.Padding)
	v.SetDefault("chart.right_margin", chart.RightMargin)
	v.SetDefault("chart.candle_width", chart.CandleWidth)
	v.SetDefault("chart.candle_margin", chart.CandleMargin)
	v.SetDefault("chart.rise_color", chart.RiseColor)
	v.SetDefault("chart.fall_color", chart.FallColor)
	v.SetDefault("chart.volume_height", chart.VolumeHeight)
	v.SetDefault("chart.volume_headroom", chart.VolumeHeadroom)
	v.SetDefault("chart.limit", chart.Limit)

	maLines := make([]map[string]any, 0, len(chart.MALines))
	for _, line := range chart.MALines {
		maLines = append(maLines, map[string]any{"name": line.Name, "period": line.Period, "color": line.Color})
	}
	v.SetDefault("chart.ma_lines", maLines)

	v.SetDefault("poll.interval", time.Minute)
	v.SetDefault("poll.session", true)
	v.SetDefault("storage.driver", "buntdb")
	v.SetDefault("storage.path", "candleline.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("source.driver", "csv")
	v.SetDefault("source.dir", "data")
	v.SetDefault("source.resample", []string{})
	v.SetDefault("source.routes", map[string]string{})
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.api_secret", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.users", []int{})
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.backend", "zerolog")
	v.SetDefault("log.colored", true)
	v.SetDefault("log.json", false)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path over the defaults; a missing
// file leaves the defaults and environment in place
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// WriteDefault writes the default configuration to path, creating its directory
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create configuration directory: %w", err)
	}

	if err := newViper().WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not save default configuration: %w", err)
	}
	return nil
}

// Validate checks the choices that cannot be defaulted
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "buntdb", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	for _, driver := range append([]string{c.Source.Driver}, lo.Values(c.Source.Routes)...) {
		switch driver {
		case "csv", "binance":
		default:
			return fmt.Errorf("unknown source driver %q", driver)
		}
	}

	if c.Chart.CandleWidth <= 0 || c.Chart.Limit <= 0 {
		return errors.New("chart candle width and limit must be positive")
	}
	return nil
}

// ChartSettings converts the chart section into the settings the chart packages use
func (c Config) ChartSettings() core.ChartSettings {
	maLines := make([]core.MALine, 0, len(c.Chart.MALines))
	for _, line := range c.Chart.MALines {
		maLines = append(maLines, core.MALine{Name: line.Name, Period: line.Period, Color: line.Color})
	}

	return core.ChartSettings{
		Padding:        c.Chart.Padding,
		RightMargin:    c.Chart.RightMargin,
		CandleWidth:    c.Chart.CandleWidth,
		CandleMargin:   c.Chart.CandleMargin,
		RiseColor:      c.Chart.RiseColor,
		FallColor:      c.Chart.FallColor,
		VolumeHeight:   c.Chart.VolumeHeight,
		VolumeHeadroom: c.Chart.VolumeHeadroom,
		MALines:        maLines,
		Limit:          c.Chart.Limit,
	}
}

// Settings converts the configuration into core.Settings
func (c Config) Settings() core.Settings {
	return core.Settings{
		Codes: c.Codes,
		Chart: c.ChartSettings(),
		Telegram: core.TelegramSettings{
			Enabled: c.Telegram.Enabled,
			Token:   c.Telegram.Token,
			Users:   c.Telegram.Users,
		},
	}
}
