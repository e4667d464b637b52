// Package sqlite owns the embedded analytical table of enriched readings.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// Open opens (creating if needed) the SQLite database at path. Parent
// directories are created so a fresh checkout can run without setup.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Loader upserts enriched readings into a single fixed-schema table and
// reads them back per logical date. It implements pipeline.Loader and
// quality.ReadingSource.
type Loader struct {
	db     *gorm.DB
	table  string
	logger *slog.Logger
}

// NewLoader creates a Loader bound to one table and migrates the schema.
// The schema is fixed; migration only ever creates the table and columns.
func NewLoader(db *gorm.DB, table string, logger *slog.Logger) (*Loader, error) {
	if table == "" {
		table = domain.Reading{}.TableName()
	}
	if err := db.Table(table).AutoMigrate(&domain.Reading{}); err != nil {
		return nil, &domain.LoadError{Op: "migrate", Err: err}
	}
	return &Loader{db: db, table: table, logger: logger}, nil
}

// Upsert replaces one logical date's rows with the given readings: delete
// existing rows for that date, insert the new ones, all in one transaction.
// On any failure the transaction rolls back and the table keeps its
// pre-call state. Re-running with identical input is an effective no-op.
func (l *Loader) Upsert(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return &domain.LoadError{Op: "upsert", Err: errors.New("no readings")}
	}
	day := readings[0].LogicalDate
	for _, r := range readings[1:] {
		if !r.LogicalDate.Equal(day) {
			return &domain.LoadError{Op: "upsert", Err: fmt.Errorf(
				"mixed logical dates: %s and %s",
				day.Format(domain.DateFormat), r.LogicalDate.Format(domain.DateFormat))}
		}
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(l.table).Where("date = ?", day).Delete(&domain.Reading{}).Error; err != nil {
			return fmt.Errorf("delete day: %w", err)
		}
		if err := tx.Table(l.table).CreateInBatches(readings, 100).Error; err != nil {
			return fmt.Errorf("insert day: %w", err)
		}
		return nil
	})
	if err != nil {
		return &domain.LoadError{Op: "upsert", Err: err}
	}

	l.logger.Info("loaded readings",
		"date", day.Format(domain.DateFormat), "rows", len(readings), "table", l.table)
	return nil
}

// ReadDay returns one logical date's rows ordered by timestamp.
func (l *Loader) ReadDay(ctx context.Context, day time.Time) ([]domain.Reading, error) {
	var rows []domain.Reading
	err := l.db.WithContext(ctx).
		Table(l.table).
		Where("date = ?", domain.Midnight(day)).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, &domain.LoadError{Op: "read", Err: err}
	}
	return rows, nil
}
