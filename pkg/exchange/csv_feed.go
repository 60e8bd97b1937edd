package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/raykavin/candleline/pkg/core"
)

var defaultHeaderMap = map[string]int{
	"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
}

// CodeFeed is one CSV file holding the bars of a code at a period. Resample
// lists coarser periods derived from it, "1d" into "week" for instance.
type CodeFeed struct {
	Code     string
	File     string
	Period   string
	Resample []string
	Location *time.Location
}

// CSVSource serves bars loaded from CSV files
type CSVSource struct {
	series map[string][]core.Bar
}

// NewCSVSource reads every feed and its resampled periods up front
func NewCSVSource(feeds ...CodeFeed) (*CSVSource, error) {
	source := &CSVSource{series: make(map[string][]core.Bar)}

	for _, feed := range feeds {
		bars, err := readBarsFromCSV(feed)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", feed.File, err)
		}

		if err := source.Add(feed.Code, feed.Period, bars); err != nil {
			return nil, fmt.Errorf("read %s: %w", feed.File, err)
		}

		location := feed.Location
		if location == nil {
			location = time.UTC
		}

		for _, target := range feed.Resample {
			resampled, err := Resample(bars, target, location)
			if err != nil {
				return nil, err
			}
			if err := source.Add(feed.Code, target, resampled); err != nil {
				return nil, err
			}
		}
	}

	return source, nil
}

// FeedsFromDir lists the CSV files of dir named CODE-period.csv, SH600519-1d.csv for instance
func FeedsFromDir(dir string, resample []string, location *time.Location) ([]CodeFeed, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}

	feeds := make([]CodeFeed, 0, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		cut := strings.LastIndex(name, "-")
		if cut <= 0 || cut == len(name)-1 {
			return nil, fmt.Errorf("csv file %s is not named CODE-period.csv", file)
		}

		feeds = append(feeds, CodeFeed{
			Code:     name[:cut],
			File:     file,
			Period:   name[cut+1:],
			Resample: resample,
			Location: location,
		})
	}
	return feeds, nil
}

func seriesKey(code, period string) string {
	return fmt.Sprintf("%s--%s", strings.ToUpper(strings.TrimSpace(code)), core.NormalizePeriod(period))
}

// Add registers bars for code and period after validating them
func (c *CSVSource) Add(code, period string, bars []core.Bar) error {
	if err := core.ValidateBars(bars); err != nil {
		return err
	}
	c.series[seriesKey(code, period)] = bars
	return nil
}

// Bars returns up to limit bars ending at anchor, or at the last bar when anchor is zero
func (c *CSVSource) Bars(ctx context.Context, code, period string, anchor time.Time, limit int) ([]core.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, ok := c.series[seriesKey(code, period)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownSeries, code, period)
	}

	if !anchor.IsZero() {
		bars = lo.Filter(bars, func(bar core.Bar, _ int) bool {
			return !bar.Time.After(anchor)
		})
	}

	bars = core.LastBars(bars, limit)
	out := make([]core.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

// parseHeaders analyses the CSV header row and returns the column of each field
func parseHeaders(headers []string) (headerMap map[string]int, hasCustomHeaders bool) {
	if _, err := strconv.ParseInt(headers[0], 10, 64); err == nil {
		return defaultHeaderMap, false
	}

	headerMap = make(map[string]int, len(headers))
	for index, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = index
	}

	return headerMap, true
}

func readBarsFromCSV(feed CodeFeed) ([]core.Bar, error) {
	csvFile, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInsufficientData)
	}

	headerMap, hasCustomHeaders := parseHeaders(csvLines[0])
	if hasCustomHeaders {
		csvLines = csvLines[1:]
	}

	location := feed.Location
	if location == nil {
		location = time.UTC
	}

	bars := make([]core.Bar, 0, len(csvLines))
	for i, line := range csvLines {
		bar, err := parseBarFromLine(line, headerMap, location)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}

	fillChangePercent(bars)
	return bars, nil
}

func parseTime(value string, location *time.Location) (time.Time, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(seconds, 0).In(location), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

func parseBarFromLine(line []string, headerMap map[string]int, location *time.Location) (core.Bar, error) {
	column := func(name string) (string, bool) {
		index, ok := headerMap[name]
		if !ok || index >= len(line) {
			return "", false
		}
		return strings.TrimSpace(line[index]), true
	}

	value, ok := column("time")
	if !ok {
		return core.Bar{}, fmt.Errorf("missing time column")
	}

	t, err := parseTime(value, location)
	if err != nil {
		return core.Bar{}, err
	}

	bar := core.Bar{Time: t, ChangePercent: math.NaN()}
	fields := []struct {
		name     string
		target   *float64
		optional bool
	}{
		{"open", &bar.Open, false},
		{"close", &bar.Close, false},
		{"low", &bar.Low, false},
		{"high", &bar.High, false},
		{"volume", &bar.Volume, false},
		{"turnoverrate", &bar.TurnoverRate, true},
		{"percent", &bar.ChangePercent, true},
	}

	for _, field := range fields {
		value, ok := column(field.name)
		if !ok {
			if field.optional {
				continue
			}
			return core.Bar{}, fmt.Errorf("missing %s column", field.name)
		}

		if *field.target, err = strconv.ParseFloat(value, 64); err != nil {
			return core.Bar{}, fmt.Errorf("parse %s: %w", field.name, err)
		}
	}

	return bar, nil
}

// fillChangePercent derives the change against the previous close where the file has none
func fillChangePercent(bars []core.Bar) {
	for i := range bars {
		if !math.IsNaN(bars[i].ChangePercent) {
			continue
		}

		bars[i].ChangePercent = 0
		if i > 0 && bars[i-1].Close != 0 {
			bars[i].ChangePercent = (bars[i].Close - bars[i-1].Close) / bars[i-1].Close * 100
		}
	}
}

// bucketOf returns the start of the target period holding t
func bucketOf(t time.Time, period string) (time.Time, error) {
	switch period {
	case "1w":
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	case "30d":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()), nil
	}

	d, err := core.PeriodDuration(period)
	if err != nil {
		return time.Time{}, err
	}

	if d%(24*time.Hour) == 0 {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		days := int(d / (24 * time.Hour))
		return day.AddDate(0, 0, -(day.YearDay()-1)%days), nil
	}

	_, offset := t.Zone()
	shift := time.Duration(offset) * time.Second
	return t.Add(shift).Truncate(d).Add(-shift), nil
}

// Resample merges consecutive bars into the buckets of a coarser period,
// "week" and "month" following the calendar of location
func Resample(bars []core.Bar, period string, location *time.Location) ([]core.Bar, error) {
	target := core.NormalizePeriod(period)
	resampled := make([]core.Bar, 0, len(bars)/4+1)

	var current core.Bar
	var bucket time.Time
	var reference float64

	for i, bar := range bars {
		start, err := bucketOf(bar.Time.In(location), target)
		if err != nil {
			return nil, err
		}

		if i == 0 || !start.Equal(bucket) {
			if i > 0 {
				resampled = append(resampled, current)
			}
			bucket, current = start, bar
			reference = bar.Close
			if bar.ChangePercent != 0 {
				reference = bar.Close / (1 + bar.ChangePercent/100)
			}
			current.ChangePercent = 0
			if reference != 0 {
				current.ChangePercent = (bar.Close - reference) / reference * 100
			}
			continue
		}

		current.High = math.Max(current.High, bar.High)
		current.Low = math.Min(current.Low, bar.Low)
		current.Close = bar.Close
		current.Volume += bar.Volume
		current.TurnoverRate += bar.TurnoverRate
		if reference != 0 {
			current.ChangePercent = (bar.Close - reference) / reference * 100
		}
	}

	if len(bars) > 0 {
		resampled = append(resampled, current)
	}

	return resampled, nil
}
