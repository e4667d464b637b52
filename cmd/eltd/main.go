// Command eltd is the long-running daemon: it runs the air-quality pipeline
// for the previous UTC day once per day at SCHEDULE_AT and serves the
// operational HTTP endpoints in between.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"

	httpadapter "github.com/quietmarsh/air-quality-elt/internal/adapter/http"
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
		slog.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
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

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	_, err = scheduler.Every(1).Day().At(cfg.ScheduleAt).Do(func() {
		day := domain.Midnight(time.Now().UTC().AddDate(0, 0, -1))
		// Failures are already counted and logged inside Run; the schedule
		// simply fires again tomorrow.
		_ = p.Run(ctx, pipeline.RunOptions{Day: day})
	})
	if err != nil {
		return fmt.Errorf("schedule daily run: %w", err)
	}
	scheduler.StartAsync()
	logger.Info("daemon started", "schedule_at", cfg.ScheduleAt, "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
