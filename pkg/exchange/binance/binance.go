package binance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/raykavin/candleline/pkg/core"
)

// intervals maps chart periods onto kline intervals
var intervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"60m": "1h",
	"1h":  "1h",
	"4h":  "4h",
	"1d":  "1d",
	"1w":  "1w",
	"30d": "1M",
}

// Interval resolves a chart period ("day", "60m", "1w"...) to a kline interval
func Interval(period string) (string, error) {
	if interval, ok := intervals[core.NormalizePeriod(period)]; ok {
		return interval, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, period)
}

// Symbol turns a chart code into an exchange symbol
func Symbol(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "/", ""))
}

func parseFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse kline %s %q: %w", field, value, err)
	}
	return v, nil
}

// convertKlineToBar converts a kline to a bar; percent is against prevClose
func convertKlineToBar(k binance.Kline, prevClose float64) (core.Bar, error) {
	bar := core.Bar{Time: time.UnixMilli(k.OpenTime)}

	var err error
	for _, field := range []struct {
		name   string
		value  string
		target *float64
	}{
		{"open", k.Open, &bar.Open},
		{"high", k.High, &bar.High},
		{"low", k.Low, &bar.Low},
		{"close", k.Close, &bar.Close},
		{"volume", k.Volume, &bar.Volume},
	} {
		if *field.target, err = parseFloat(field.name, field.value); err != nil {
			return core.Bar{}, err
		}
	}

	reference := prevClose
	if reference == 0 {
		reference = bar.Open
	}
	if reference != 0 {
		bar.ChangePercent = (bar.Close - reference) / reference * 100
	}

	return bar, nil
}
