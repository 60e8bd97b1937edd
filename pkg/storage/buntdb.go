package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/tidwall/buntdb"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
)

const (
	keyPrefix      = "line:"
	codePeriodIdx  = "code_period"
	keyDigits      = 19
	memoryLocation = ":memory:"
)

// BuntStorage implements core.LineStorage on top of BuntDB. Lines are kept as
// JSON values under zero padded id keys so key order is id order.
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
	log    logger.Logger
}

// FromMemory creates an in-memory storage
func FromMemory(log logger.Logger) (*BuntStorage, error) {
	return NewBuntStorage(memoryLocation, log)
}

// FromFile creates a file-based storage
func FromFile(file string, log logger.Logger) (*BuntStorage, error) {
	return NewBuntStorage(file, log)
}

// NewBuntStorage opens the database and resumes the id sequence from the
// highest stored key
func NewBuntStorage(sourceFile string, log logger.Logger) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(codePeriodIdx, keyPrefix+"*", buntdb.IndexJSON("code"), buntdb.IndexJSON("period"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &BuntStorage{db: db, log: log}
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.DescendKeys(keyPrefix+"*", func(key, _ string) bool {
			storage.lastID, _ = parseKey(key)
			return false
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read last id: %w", err)
	}

	return storage, nil
}

func lineKey(id int64) string {
	return keyPrefix + fmt.Sprintf("%0*d", keyDigits, id)
}

func parseKey(key string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(key, keyPrefix), 10, 64)
}

func (b *BuntStorage) nextID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// Lines returns the lines of code and period ordered by id. Pixel anchored
// records are skipped; see LegacyLines.
func (b *BuntStorage) Lines(_ context.Context, code, period string) ([]*core.TrendLine, error) {
	lines := make([]*core.TrendLine, 0)

	err := b.scan(code, period, func(key, value string) {
		line, legacy, err := core.DecodeLine([]byte(value))
		switch {
		case legacy != nil:
			b.log.WithField("key", key).Warn("skipping pixel anchored trend line")
		case err != nil:
			b.log.WithError(err).WithField("key", key).Warn("skipping unreadable trend line")
		default:
			lines = append(lines, line)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

// LegacyLines returns the pixel anchored records of code and period
func (b *BuntStorage) LegacyLines(_ context.Context, code, period string) ([]*core.LegacyPixelLine, error) {
	legacy := make([]*core.LegacyPixelLine, 0)

	err := b.scan(code, period, func(_, value string) {
		if _, old, _ := core.DecodeLine([]byte(value)); old != nil {
			legacy = append(legacy, old)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(legacy, func(i, j int) bool { return legacy[i].ID < legacy[j].ID })
	return legacy, nil
}

func (b *BuntStorage) scan(code, period string, fn func(key, value string)) error {
	pivot := fmt.Sprintf(`{"code":%q,"period":%q}`, strings.ToUpper(code), period)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendEqual(codePeriodIdx, pivot, func(key, value string) bool {
			fn(key, value)
			return true
		})
	})
	if err != nil {
		return fmt.Errorf("failed to iterate over lines: %w", err)
	}
	return nil
}

// SaveLines stores every valid line, assigning ids and upper-casing codes.
// Invalid lines are reported together while the valid ones are kept.
func (b *BuntStorage) SaveLines(_ context.Context, lines []*core.TrendLine) error {
	var errs []error

	err := b.db.Update(func(tx *buntdb.Tx) error {
		for _, line := range lines {
			if err := line.Validate(); err != nil {
				errs = append(errs, err)
				continue
			}

			if err := b.set(tx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return errors.Join(errs...)
}

func (b *BuntStorage) set(tx *buntdb.Tx, line *core.TrendLine) error {
	line.Code = strings.ToUpper(line.Code)
	if line.ID == 0 {
		line.ID = b.nextID()
	}

	content, err := line.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal line: %w", err)
	}

	if _, _, err = tx.Set(lineKey(line.ID), string(content), nil); err != nil {
		return fmt.Errorf("failed to store line: %w", err)
	}
	return nil
}

// DeleteLine removes a line, legacy or not, by id
func (b *BuntStorage) DeleteLine(_ context.Context, id int64) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(lineKey(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("line %d: %w", id, core.ErrLineNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to delete line: %w", err)
		}
		return nil
	})
}

// ReplaceLegacy swaps a pixel anchored record for its migrated line under the same id
func (b *BuntStorage) ReplaceLegacy(_ context.Context, id int64, line *core.TrendLine) error {
	if err := line.Validate(); err != nil {
		return err
	}

	return b.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(lineKey(id)); err != nil {
			return fmt.Errorf("line %d: %w", id, core.ErrLineNotFound)
		}

		line.ID = id
		return b.set(tx, line)
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
