// Command elt runs the air-quality pipeline once for a single logical date
// and exits. It is the manual-invocation and backfill entry point; the
// scheduled daemon lives in cmd/eltd.
//
// Usage:
//
//	go run ./cmd/elt -date 2024-01-01
//	go run ./cmd/elt -date 2024-01-01 -replay
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quietmarsh/air-quality-elt/internal/adapter/openmeteo"
	"github.com/quietmarsh/air-quality-elt/internal/adapter/rawstore"
	"github.com/quietmarsh/air-quality-elt/internal/adapter/sqlite"
	"github.com/quietmarsh/air-quality-elt/internal/config"
	"github.com/quietmarsh/air-quality-elt/internal/domain"
	"github.com/quietmarsh/air-quality-elt/internal/observability"
	"github.com/quietmarsh/air-quality-elt/internal/pipeline"
	"github.com/quietmarsh/air-quality-elt/internal/quality"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	dateFlag := flag.String("date", "", "logical date to process (YYYY-MM-DD, default: previous UTC day)")
	replay := flag.Bool("replay", false, "reprocess the stored payload instead of fetching")
	flag.Parse()

	day, err := resolveDay(*dateFlag)
	if err != nil {
		return err
	}

	// Optional local overrides; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlite.Close(db); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	loader, err := sqlite.NewLoader(db, cfg.Table, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(
		openmeteo.NewClient(cfg.BaseURL, cfg.Site(), cfg.FetchTimeout, logger),
		rawstore.New(cfg.RawDir, logger),
		loader,
		quality.NewGate(loader, logger),
		cfg.City,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return p.Run(ctx, pipeline.RunOptions{Day: day, Replay: *replay})
}

// resolveDay parses -date, defaulting to the previous UTC day, the latest
// date the hourly feed has complete data for.
func resolveDay(s string) (time.Time, error) {
	if s == "" {
		return domain.Midnight(time.Now().UTC().AddDate(0, 0, -1)), nil
	}
	day, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return time.Time{}, errors.New("invalid -date, want YYYY-MM-DD")
	}
	return day, nil
}
