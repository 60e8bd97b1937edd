package download

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
)

const (
	batchSize        = 500
	defaultPrecision = 4
)

// Downloader pages bars out of a source into a CSV file the csv source can read
type Downloader struct {
	source core.BarSource
	log    logger.Logger
	output io.Writer
	now    func() time.Time
}

// NewDownloader creates a new downloader; progress is drawn on progress
func NewDownloader(source core.BarSource, log logger.Logger, progress io.Writer) Downloader {
	return Downloader{
		source: source,
		log:    log,
		output: progress,
		now:    time.Now,
	}
}

// Parameters defines the time range and format of a download
type Parameters struct {
	Start     time.Time
	End       time.Time
	Precision int
}

// Option is a function type for configuring download parameters
type Option func(*Parameters)

// WithInterval sets specific start and end times for the download
func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithDays sets the download period to a specific number of days until now
func WithDays(days int) Option {
	return func(parameters *Parameters) {
		parameters.End = time.Time{}
		parameters.Start = time.Now().AddDate(0, 0, -days)
	}
}

// WithPrecision sets the number of decimals written
func WithPrecision(precision int) Option {
	return func(parameters *Parameters) {
		parameters.Precision = precision
	}
}

// calculateBarCount estimates the number of bars in the range
func calculateBarCount(start, end time.Time, period string) (int, error) {
	interval, err := core.PeriodDuration(period)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start)/interval) + 1, nil
}

// Download fetches the bars of code between the parameters and writes them
// ascending to outputPath
func (d Downloader) Download(ctx context.Context, code, period, outputPath string, options ...Option) error {
	parameters := &Parameters{Start: d.now().AddDate(0, -1, 0), Precision: defaultPrecision}
	for _, option := range options {
		option(parameters)
	}

	end := parameters.End
	if end.IsZero() || end.After(d.now()) {
		end = d.now()
	}

	expected, err := calculateBarCount(parameters.Start, end, period)
	if err != nil {
		return err
	}

	d.log.Infof("downloading about %d %s bars of %s", expected, period, code)
	progressBar := progressbar.NewOptions(expected,
		progressbar.OptionSetWriter(d.output),
		progressbar.OptionSetDescription(code),
		progressbar.OptionShowCount(),
	)

	bars, err := d.fetchBackwards(ctx, code, period, parameters.Start, parameters.End, progressBar)
	if err != nil {
		return err
	}

	if err = progressBar.Finish(); err != nil {
		d.log.WithError(err).Warn("failed to finish progress bar")
	}

	recordFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	if err := writer.Write(core.CSVHeaders); err != nil {
		return err
	}
	for _, bar := range bars {
		if err := writer.Write(bar.ToSlice(parameters.Precision)); err != nil {
			return err
		}
	}

	writer.Flush()
	d.log.Infof("wrote %d bars to %s", len(bars), outputPath)
	return writer.Error()
}

// fetchBackwards pages from the end anchor towards start, since sources
// serve the bars that end at an anchor
func (d Downloader) fetchBackwards(ctx context.Context, code, period string, start, end time.Time,
	progressBar *progressbar.ProgressBar) ([]core.Bar, error) {

	var bars []core.Bar
	anchor := end

	for {
		batch, err := d.source.Bars(ctx, code, period, anchor, batchSize)
		if err != nil {
			return nil, fmt.Errorf("download %s %s: %w", code, period, err)
		}

		kept := batch[:0:0]
		for _, bar := range batch {
			if !bar.Time.Before(start) && (len(bars) == 0 || bar.Time.Before(bars[0].Time)) {
				kept = append(kept, bar)
			}
		}

		bars = append(kept, bars...)
		if err := progressBar.Add(len(kept)); err != nil {
			d.log.WithError(err).Warn("failed to update progress bar")
		}

		if len(kept) == 0 || len(batch) < batchSize || !batch[0].Time.After(start) {
			return bars, nil
		}
		anchor = batch[0].Time.Add(-time.Millisecond)
	}
}
