package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Bar represents one OHLCV sample of a (code, period) series
type Bar struct {
	Time          time.Time `json:"time"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	TurnoverRate  float64   `json:"turnoverRate"`
	ChangePercent float64   `json:"percent"`
}

// Rise reports whether the bar closed at or above its open
func (b Bar) Rise() bool { return b.Close >= b.Open }

// Timestamp returns the bar time as unix milliseconds, the unit trend lines are anchored in
func (b Bar) Timestamp() int64 { return b.Time.UnixMilli() }

// Validate checks the OHLC ordering invariant low <= open,close <= high
func (b Bar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bar %s has non-finite price", ErrInvalidBar, b.Time.Format(time.RFC3339))
		}
	}

	if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("%w: bar %s violates low <= open,close <= high", ErrInvalidBar, b.Time.Format(time.RFC3339))
	}

	return nil
}

// CSVHeaders names the columns written by ToSlice
var CSVHeaders = []string{"time", "open", "close", "low", "high", "volume", "turnoverRate", "percent"}

// ToSlice converts a bar to a CSV row with the given decimal precision
func (b Bar) ToSlice(precision int) []string {
	return []string{
		strconv.FormatInt(b.Time.Unix(), 10),
		strconv.FormatFloat(b.Open, 'f', precision, 64),
		strconv.FormatFloat(b.Close, 'f', precision, 64),
		strconv.FormatFloat(b.Low, 'f', precision, 64),
		strconv.FormatFloat(b.High, 'f', precision, 64),
		strconv.FormatFloat(b.Volume, 'f', precision, 64),
		strconv.FormatFloat(b.TurnoverRate, 'f', precision, 64),
		strconv.FormatFloat(b.ChangePercent, 'f', precision, 64),
	}
}

// ValidateBars checks every bar and the ascending, duplicate-free time order of the series
func ValidateBars(bars []Bar) error {
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d is not after bar %d", ErrInvalidBar, i, i-1)
		}
	}
	return nil
}

// Closes extracts the close series of bars
func Closes(bars []Bar) Series[float64] {
	closes := make(Series[float64], len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}

// Volumes extracts the volume series of bars
func Volumes(bars []Bar) Series[float64] {
	volumes := make(Series[float64], len(bars))
	for i, bar := range bars {
		volumes[i] = bar.Volume
	}
	return volumes
}

// LastBars keeps at most size bars from the end of the series
func LastBars(bars []Bar, size int) []Bar {
	if size > 0 && len(bars) > size {
		return bars[len(bars)-size:]
	}
	return bars
}
