// Package rawstore persists verbatim API payloads on local disk, one file
// per logical date, so any run can be replayed without refetching.
package rawstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// Store writes and reads date-keyed payload files under a single directory.
// The directory is append-only across dates; within a date a re-run
// overwrites. It implements pipeline.RawStore.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir. The directory is created on first Save.
func New(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Path returns the deterministic file path for a logical date.
func (s *Store) Path(day time.Time) string {
	name := fmt.Sprintf("air_quality_%s.json", domain.Midnight(day).Format(domain.DateFormat))
	return filepath.Join(s.dir, name)
}

// Save writes the verbatim payload for a logical date, overwriting any
// existing file. The write goes through a temp file and rename so a crashed
// run never leaves a torn payload behind.
func (s *Store) Save(day time.Time, payload []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw dir: %w", err)
	}

	dst := s.Path(day)
	tmp, err := os.CreateTemp(s.dir, ".air_quality_*.json")
	if err != nil {
		return "", fmt.Errorf("create temp payload: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close payload: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename payload: %w", err)
	}

	s.logger.Info("persisted raw payload", "path", dst, "bytes", len(payload))
	return dst, nil
}

// Load reads back a previously stored payload, byte-identical to what Save
// received. Returns *domain.NotFoundError when the date has never been saved.
func (s *Store) Load(day time.Time) ([]byte, error) {
	path := s.Path(day)
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}
