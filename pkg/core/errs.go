package core

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateRange     = errors.New("price range is degenerate")
	ErrMissingClose        = errors.New("bar has no numeric close")
	ErrInvalidPeriod       = errors.New("invalid moving average period")
	ErrInvalidBar          = errors.New("invalid bar")
	ErrViewportNotMeasured = errors.New("viewport not measured")
	ErrLineNotFound        = errors.New("trend line not found")
	ErrPixelAnchored       = errors.New("trend line is pixel anchored")
	ErrInvalidLine         = errors.New("invalid trend line")
	ErrNotDrawing          = errors.New("engine is not drawing")
	ErrNoSelection         = errors.New("no trend line selected")
)

// MissingCloseError reports the bar index whose close is not a number
type MissingCloseError struct {
	Index int
}

func (e *MissingCloseError) Error() string {
	return fmt.Sprintf("bar %d: %v", e.Index, ErrMissingClose)
}

func (e *MissingCloseError) Unwrap() error {
	return ErrMissingClose
}
