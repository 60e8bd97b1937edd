package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// LineKind tags the two trend line shapes
type LineKind string

const (
	LineSegment    LineKind = "segment"
	LineHorizontal LineKind = "horizontal"
)

// TrendLine is a user drawn annotation anchored in price/time units.
// Segment lines use the start/end anchors, horizontal lines use Price.
type TrendLine struct {
	ID         int64    `json:"id"`
	Code       string   `json:"code"`
	Period     string   `json:"period"`
	Kind       LineKind `json:"kind"`
	StartTime  int64    `json:"startTime"`
	StartPrice float64  `json:"startPrice"`
	EndTime    int64    `json:"endTime"`
	EndPrice   float64  `json:"endPrice"`
	Price      float64  `json:"price"`
}

// NewSegment builds a two point line; times are unix milliseconds
func NewSegment(code, period string, startTime int64, startPrice float64, endTime int64, endPrice float64) *TrendLine {
	return &TrendLine{
		Code:       code,
		Period:     period,
		Kind:       LineSegment,
		StartTime:  startTime,
		StartPrice: startPrice,
		EndTime:    endTime,
		EndPrice:   endPrice,
	}
}

// NewHorizontal builds a single price line
func NewHorizontal(code, period string, price float64) *TrendLine {
	return &TrendLine{
		Code:   code,
		Period: period,
		Kind:   LineHorizontal,
		Price:  price,
	}
}

func (l TrendLine) String() string {
	switch l.Kind {
	case LineHorizontal:
		return fmt.Sprintf("[%d] %s %s horizontal %.2f", l.ID, l.Code, l.Period, l.Price)
	default:
		return fmt.Sprintf("[%d] %s %s segment (%d, %.2f) -> (%d, %.2f)",
			l.ID, l.Code, l.Period, l.StartTime, l.StartPrice, l.EndTime, l.EndPrice)
	}
}

// Prices returns the start and end prices of the line
func (l TrendLine) Prices() (start, end float64) {
	if l.Kind == LineHorizontal {
		return l.Price, l.Price
	}
	return l.StartPrice, l.EndPrice
}

// Flat reports whether the line keeps the same price along its length
func (l TrendLine) Flat() bool {
	start, end := l.Prices()
	return start == end
}

// Validate checks that the line is domain anchored and complete
func (l TrendLine) Validate() error {
	if strings.TrimSpace(l.Code) == "" || strings.TrimSpace(l.Period) == "" {
		return fmt.Errorf("%w: code and period are required", ErrInvalidLine)
	}

	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch l.Kind {
	case LineSegment:
		if !finite(l.StartPrice) || !finite(l.EndPrice) {
			return fmt.Errorf("%w: segment prices must be finite", ErrInvalidLine)
		}
		if l.StartTime <= 0 || l.EndTime <= 0 {
			return fmt.Errorf("%w: segment times must be positive", ErrInvalidLine)
		}
	case LineHorizontal:
		if !finite(l.Price) {
			return fmt.Errorf("%w: horizontal price must be finite", ErrInvalidLine)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidLine, l.Kind)
	}

	return nil
}

// lineRecord is the wire shape; pointer fields tell absent from zero
type lineRecord struct {
	ID         int64    `json:"id"`
	Code       string   `json:"code"`
	Period     string   `json:"period"`
	Kind       LineKind `json:"kind,omitempty"`
	StartTime  *int64   `json:"startTime,omitempty"`
	StartPrice *float64 `json:"startPrice,omitempty"`
	EndTime    *int64   `json:"endTime,omitempty"`
	EndPrice   *float64 `json:"endPrice,omitempty"`
	Price      *float64 `json:"price,omitempty"`

	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
	X2 *float64 `json:"x2,omitempty"`
	Y2 *float64 `json:"y2,omitempty"`
}

// MarshalJSON writes only the fields of the line's kind
func (l TrendLine) MarshalJSON() ([]byte, error) {
	rec := lineRecord{ID: l.ID, Code: l.Code, Period: l.Period, Kind: l.Kind}

	switch l.Kind {
	case LineSegment:
		rec.StartTime, rec.StartPrice = &l.StartTime, &l.StartPrice
		rec.EndTime, rec.EndPrice = &l.EndTime, &l.EndPrice
	case LineHorizontal:
		rec.Price = &l.Price
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidLine, l.Kind)
	}

	return json.Marshal(rec)
}

// UnmarshalJSON accepts both kinds, infers the kind of untagged records and
// rejects pixel anchored legacy records with ErrPixelAnchored
func (l *TrendLine) UnmarshalJSON(data []byte) error {
	var rec lineRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	if rec.X1 != nil || rec.Y1 != nil || rec.X2 != nil || rec.Y2 != nil {
		return fmt.Errorf("line %d: %w", rec.ID, ErrPixelAnchored)
	}

	kind := rec.Kind
	if kind == "" {
		kind = LineSegment
		if rec.Price != nil && rec.StartTime == nil {
			kind = LineHorizontal
		}
	}

	line := TrendLine{ID: rec.ID, Code: rec.Code, Period: rec.Period, Kind: kind}
	switch kind {
	case LineSegment:
		if rec.StartTime == nil || rec.StartPrice == nil || rec.EndTime == nil || rec.EndPrice == nil {
			return fmt.Errorf("%w: segment %d misses an anchor", ErrInvalidLine, rec.ID)
		}
		line.StartTime, line.StartPrice = *rec.StartTime, *rec.StartPrice
		line.EndTime, line.EndPrice = *rec.EndTime, *rec.EndPrice
	case LineHorizontal:
		if rec.Price == nil {
			return fmt.Errorf("%w: horizontal %d misses its price", ErrInvalidLine, rec.ID)
		}
		line.Price = *rec.Price
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidLine, kind)
	}

	*l = line
	return nil
}

// LegacyPixelLine is the pixel anchored record shape of older annotations,
// kept only so that it can be migrated into a TrendLine
type LegacyPixelLine struct {
	ID     int64   `json:"id"`
	Code   string  `json:"code"`
	Period string  `json:"period"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DecodeLine decodes a stored record. Pixel anchored records are returned
// as a LegacyPixelLine together with ErrPixelAnchored.
func DecodeLine(data []byte) (*TrendLine, *LegacyPixelLine, error) {
	var line TrendLine
	err := json.Unmarshal(data, &line)
	if err == nil {
		return &line, nil, nil
	}

	if !errors.Is(err, ErrPixelAnchored) {
		return nil, nil, err
	}

	var legacy LegacyPixelLine
	if lerr := json.Unmarshal(data, &legacy); lerr != nil {
		return nil, nil, lerr
	}

	return nil, &legacy, err
}
