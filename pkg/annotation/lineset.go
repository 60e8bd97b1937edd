package annotation

import (
	"context"
	"fmt"

	"github.com/StudioSol/set"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/signal"
)

// LineSet holds the authoritative trend lines of one chart. It reloads them
// from storage only when the refresh signal moved past the last load.
type LineSet struct {
	key     signal.Key
	storage core.LineStorage
	refresh *signal.Feed

	lines  []*core.TrendLine
	ids    *set.LinkedHashSetINT64
	seen   uint64
	loaded bool
}

func NewLineSet(code, period string, storage core.LineStorage, refresh *signal.Feed) *LineSet {
	return &LineSet{
		key:     signal.NewKey(code, period),
		storage: storage,
		refresh: refresh,
		ids:     set.NewLinkedHashSetINT64(),
	}
}

// Refresh reloads the lines when they were never loaded or the refresh
// signal was bumped since. It reports whether a reload happened.
func (s *LineSet) Refresh(ctx context.Context) (bool, error) {
	seq := s.refresh.Seq(s.key)
	if s.loaded && seq == s.seen {
		return false, nil
	}

	lines, err := s.storage.Lines(ctx, s.key.Code, s.key.Period)
	if err != nil {
		return false, fmt.Errorf("load lines of %s: %w", s.key, err)
	}

	ids := set.NewLinkedHashSetINT64()
	for _, line := range lines {
		ids.Add(line.ID)
	}

	s.lines, s.ids, s.seen, s.loaded = lines, ids, seq, true
	return true, nil
}

// Lines returns the last loaded lines, ordered as storage returned them
func (s *LineSet) Lines() []*core.TrendLine {
	return s.lines
}

// Contains reports whether the line id is part of the last load
func (s *LineSet) Contains(id int64) bool {
	return s.ids.InArray(id)
}

// Seq is the refresh counter value of the last load
func (s *LineSet) Seq() uint64 {
	return s.seen
}
