package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/raykavin/candleline/pkg/core"
)

// lineModel is the trend_lines row. Horizontal lines leave the segment
// columns at zero and segments leave price at zero.
type lineModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Code       string `gorm:"index:idx_code_period;size:32;not null"`
	Period     string `gorm:"index:idx_code_period;size:16;not null"`
	Kind       string `gorm:"size:16;not null"`
	StartTime  int64
	StartPrice float64
	EndTime    int64
	EndPrice   float64
	Price      float64
	CreatedAt  time.Time
}

func (lineModel) TableName() string {
	return "trend_lines"
}

func toModel(line *core.TrendLine) lineModel {
	return lineModel{
		ID:         line.ID,
		Code:       strings.ToUpper(line.Code),
		Period:     line.Period,
		Kind:       string(line.Kind),
		StartTime:  line.StartTime,
		StartPrice: line.StartPrice,
		EndTime:    line.EndTime,
		EndPrice:   line.EndPrice,
		Price:      line.Price,
	}
}

func (m lineModel) line() *core.TrendLine {
	return &core.TrendLine{
		ID:         m.ID,
		Code:       m.Code,
		Period:     m.Period,
		Kind:       core.LineKind(m.Kind),
		StartTime:  m.StartTime,
		StartPrice: m.StartPrice,
		EndTime:    m.EndTime,
		EndPrice:   m.EndPrice,
		Price:      m.Price,
	}
}

// SQLStorage implements core.LineStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = db.AutoMigrate(&lineModel{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// Lines returns the lines of code and period ordered by id
func (s *SQLStorage) Lines(ctx context.Context, code, period string) ([]*core.TrendLine, error) {
	var rows []lineModel

	result := s.db.WithContext(ctx).
		Where("code = ? AND period = ?", strings.ToUpper(code), period).
		Order("id ASC").
		Find(&rows)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch lines: %w", result.Error)
	}

	return lo.Map(rows, func(row lineModel, _ int) *core.TrendLine { return row.line() }), nil
}

// SaveLines inserts every valid line in one transaction and writes the
// generated ids back. Invalid lines are reported together.
func (s *SQLStorage) SaveLines(ctx context.Context, lines []*core.TrendLine) error {
	valid, invalid := lo.FilterReject(lines, func(line *core.TrendLine, _ int) bool {
		return line.Validate() == nil
	})

	err := s.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, line := range valid {
			row := toModel(line)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create line: %w", err)
			}
			line.ID, line.Code = row.ID, row.Code
		}
		return nil
	})
	if err != nil {
		return err
	}

	return errors.Join(lo.Map(invalid, func(line *core.TrendLine, _ int) error { return line.Validate() })...)
}

// DeleteLine removes a line by id
func (s *SQLStorage) DeleteLine(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&lineModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete line: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("line %d: %w", id, core.ErrLineNotFound)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// WithTransaction executes the given function within a database transaction
func (s *SQLStorage) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
