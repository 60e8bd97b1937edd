package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/raykavin/candleline"
	"github.com/raykavin/candleline/pkg/config"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/exchange"
	"github.com/raykavin/candleline/pkg/exchange/binance"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/logger/logrus"
	"github.com/raykavin/candleline/pkg/logger/zerolog"
	"github.com/raykavin/candleline/pkg/market"
	"github.com/raykavin/candleline/pkg/storage"
)

// newLogger builds the logger selected by the log section
func newLogger(c config.LogConfig) (logger.Logger, error) {
	switch c.Backend {
	case "", "zerolog":
		return zerolog.New(zerolog.Options{Level: c.Level, Colored: c.Colored, JSON: c.JSON})
	case "logrus":
		return logrus.New(c.Level, c.JSON, os.Stdout)
	default:
		return nil, fmt.Errorf("unknown log backend %q", c.Backend)
	}
}

// openStorage opens the trend line store selected by the storage section
func openStorage(c config.StorageConfig, log logger.Logger) (core.LineStorage, io.Closer, error) {
	switch c.Driver {
	case "sqlite":
		s, err := storage.FromSQL(sqlite.Open(c.Path), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s, err := storage.FromFile(c.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

// openSource opens the bar source selected by the source section. With
// routes, codes are dispatched by prefix and the driver is the fallback.
func openSource(c config.SourceConfig, log logger.Logger) (core.BarSource, error) {
	opened := make(map[string]core.BarSource)
	open := func(driver string) (core.BarSource, error) {
		if source, ok := opened[driver]; ok {
			return source, nil
		}

		source, err := openDriver(driver, c, log)
		if err != nil {
			return nil, err
		}
		opened[driver] = source
		return source, nil
	}

	fallback, err := open(c.Driver)
	if err != nil {
		return nil, err
	}
	if len(c.Routes) == 0 {
		return fallback, nil
	}

	router := exchange.NewRouter(fallback)
	for prefix, driver := range c.Routes {
		source, err := open(driver)
		if err != nil {
			return nil, err
		}
		router.Route(prefix, source)
	}
	return router, nil
}

func openDriver(driver string, c config.SourceConfig, log logger.Logger) (core.BarSource, error) {
	if driver == "binance" {
		var options []binance.Option
		if c.APIKey != "" {
			options = append(options, binance.WithCredentials(c.APIKey, c.APISecret))
		}
		if c.BaseURL != "" {
			options = append(options, binance.WithBaseURL(c.BaseURL))
		}
		return binance.NewSource(log, options...), nil
	}

	feeds, err := exchange.FeedsFromDir(c.Dir, c.Resample, market.Shanghai)
	if err != nil {
		return nil, err
	}

	source, err := exchange.NewCSVSource(feeds...)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d csv feeds from %s", len(feeds), c.Dir)
	return source, nil
}

// chartOptions are the chart options every command shares
func chartOptions(c *config.Config, store core.LineStorage, log logger.Logger) []candleline.Option {
	session := &market.AShare
	if !c.Poll.Session {
		session = nil
	}

	return []candleline.Option{
		candleline.WithSettings(c.ChartSettings()),
		candleline.WithStorage(store),
		candleline.WithLogger(log),
		candleline.WithInterval(c.Poll.Interval),
		candleline.WithSession(session),
	}
}

// fetchBars reads the display window of code and period, ending at anchor when set
func fetchBars(ctx context.Context, source core.BarSource, code, period string, anchor time.Time, limit int) ([]core.Bar, error) {
	bars, err := source.Bars(ctx, code, period, anchor, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", code, period, err)
	}
	return core.LastBars(bars, limit), nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.ParseInLocation(dateLayout, value, market.Shanghai)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}
