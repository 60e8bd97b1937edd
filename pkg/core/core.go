package core

import (
	"context"
	"time"
)

// BarSource fetches bars for a (code, period) series, ascending by time.
// A zero anchor asks for the most recent bars; otherwise bars end at anchor.
type BarSource interface {
	Bars(ctx context.Context, code, period string, anchor time.Time, limit int) ([]Bar, error)
}

// LineStorage persists domain-anchored trend lines keyed by (code, period)
type LineStorage interface {
	Lines(ctx context.Context, code, period string) ([]*TrendLine, error)
	SaveLines(ctx context.Context, lines []*TrendLine) error
	DeleteLine(ctx context.Context, id int64) error
}

type Notifier interface {
	Notify(string)
	OnError(err error)
}

type NotifierWithStart interface {
	Notifier
	Start()
}

// Recorder observes fetches and trend line writes, implemented by the metrics package
type Recorder interface {
	BarsFetched(code, period string, count int, err error)
	LineSaved(kind LineKind, err error)
	LineDeleted(err error)
}

// NopRecorder discards every observation
type NopRecorder struct{}

func (NopRecorder) BarsFetched(string, string, int, error) {}
func (NopRecorder) LineSaved(LineKind, error)              {}
func (NopRecorder) LineDeleted(error)                      {}
