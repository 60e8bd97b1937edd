package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
)

var ErrUnsupportedPeriod = errors.New("unsupported period")

// Source serves spot klines as chart bars
type Source struct {
	client *binance.Client
	log    logger.Logger
}

// Option configures a Source
type Option func(*Source)

// WithCredentials sets the API credentials, only needed past the public rate limits
func WithCredentials(key, secret string) Option {
	return func(s *Source) {
		s.client = binance.NewClient(key, secret)
	}
}

// WithBaseURL points the client at another REST endpoint
func WithBaseURL(url string) Option {
	return func(s *Source) {
		s.client.BaseURL = url
	}
}

// NewSource creates a kline source; options apply in order
func NewSource(log logger.Logger, options ...Option) *Source {
	source := &Source{
		client: binance.NewClient("", ""),
		log:    log,
	}

	for _, option := range options {
		option(source)
	}

	return source
}

// Ping checks that the exchange answers
func (s *Source) Ping(ctx context.Context) error {
	if err := s.client.NewPingService().Do(ctx); err != nil {
		return fmt.Errorf("binance ping fail: %w", err)
	}
	return nil
}

// Bars returns up to limit bars. Without an anchor the last kline is still
// open and is dropped; with one the series ends at the anchor.
func (s *Source) Bars(ctx context.Context, code, period string, anchor time.Time, limit int) ([]core.Bar, error) {
	interval, err := Interval(period)
	if err != nil {
		return nil, err
	}

	symbol := Symbol(code)
	service := s.client.NewKlinesService().Symbol(symbol).Interval(interval)

	live := anchor.IsZero()
	if live {
		// the reference kline and the open kline come on top of limit
		service.Limit(limit + 2)
	} else {
		service.EndTime(anchor.UnixMilli()).Limit(limit + 1)
	}

	data, err := service.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, err)
	}

	if live && len(data) > 0 {
		data = data[:len(data)-1]
	}

	bars := make([]core.Bar, 0, len(data))
	var prevClose float64
	for i, k := range data {
		bar, err := convertKlineToBar(*k, prevClose)
		if err != nil {
			return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, err)
		}
		prevClose = bar.Close

		// the first kline only provides the reference close when enough came back
		if i == 0 && len(data) > limit {
			continue
		}
		bars = append(bars, bar)
	}

	s.log.WithField("symbol", symbol).Debugf("fetched %d %s klines", len(bars), interval)
	return bars, nil
}
