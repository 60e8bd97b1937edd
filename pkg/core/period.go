package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

var periodAliases = map[string]string{
	"time":  "1m",
	"day":   "1d",
	"week":  "1w",
	"month": "30d",
}

// NormalizePeriod maps chart period names onto their duration spelling, "day" to "1d"
func NormalizePeriod(period string) string {
	p := strings.ToLower(strings.TrimSpace(period))
	if alias, ok := periodAliases[p]; ok {
		return alias
	}
	return p
}

// PeriodDuration resolves a chart period ("day", "week", "60m", "1d"...) to its bar duration
func PeriodDuration(period string) (time.Duration, error) {
	p := NormalizePeriod(period)

	d, err := str2duration.ParseDuration(p)
	if err != nil {
		return 0, fmt.Errorf("parse period %q: %w", period, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("parse period %q: non-positive duration", period)
	}

	return d, nil
}
