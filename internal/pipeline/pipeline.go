// Package pipeline runs the staged sequence for one logical date: fetch,
// persist, enrich, load, quality gate. The daily trigger, retries, and
// backoff belong to whatever invokes Run.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
	"github.com/quietmarsh/air-quality-elt/internal/observability"
)

// Fetcher retrieves one logical date's verbatim payload from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context, day time.Time) ([]byte, error)
}

// RawStore persists and replays verbatim payloads keyed by logical date.
type RawStore interface {
	Save(day time.Time, payload []byte) (string, error)
	Load(day time.Time) ([]byte, error)
}

// Loader upserts enriched readings into the analytical table.
type Loader interface {
	Upsert(ctx context.Context, readings []domain.Reading) error
}

// Gate evaluates the data-quality checks for a loaded logical date.
type Gate interface {
	Check(ctx context.Context, day time.Time) (domain.QualityReport, error)
}

// RunOptions selects what one run does.
type RunOptions struct {
	// Day is the logical date the run is responsible for; only its calendar
	// date matters.
	Day time.Time
	// Replay skips the fetch and reprocesses the stored payload instead,
	// producing bit-identical downstream input (backfill).
	Replay bool
}

// Pipeline wires the stages together. One Run call is one orchestrator task
// invocation: every failure surfaces as a typed error, nothing is retried or
// swallowed here. Runs for different dates may execute concurrently; runs
// for the same date must be serialized by the caller.
type Pipeline struct {
	fetcher Fetcher
	store   RawStore
	loader  Loader
	gate    Gate
	city    string
	logger  *slog.Logger
	metrics *observability.Metrics

	succeeded  atomic.Bool
	lastReport atomic.Pointer[domain.QualityReport]
}

// New creates a Pipeline with the given stages and observability.
func New(f Fetcher, s RawStore, l Loader, g Gate, city string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher: f,
		store:   s,
		loader:  l,
		gate:    g,
		city:    city,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed
// successfully, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.succeeded.Load() {
		return errors.New("no successful run yet")
	}
	return nil
}

// LastReport returns the quality report of the most recent run that reached
// the gate, and false before any run has.
func (p *Pipeline) LastReport() (domain.QualityReport, bool) {
	r := p.lastReport.Load()
	if r == nil {
		return domain.QualityReport{}, false
	}
	return *r, true
}

// Run executes every stage for one logical date, in order, each blocking
// until complete. The table ends up either fully updated for that date or
// untouched; a quality failure arrives after the load has committed.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) error {
	day := domain.Midnight(opts.Day)
	meta := domain.NewRunMetadata(day)
	logger := p.logger.With(
		"run_id", meta.RunID,
		"date", day.Format(domain.DateFormat),
		"replay", opts.Replay,
	)

	logger.Info("run started")
	err := p.run(ctx, day, meta, opts.Replay, logger)
	p.metrics.RunsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	p.succeeded.Store(true)
	p.metrics.LastSuccess.SetToCurrentTime()
	logger.Info("run complete")
	return nil
}

func (p *Pipeline) run(ctx context.Context, day time.Time, meta domain.RunMetadata, replay bool, logger *slog.Logger) error {
	var raw []byte
	var err error

	if replay {
		raw, err = p.timed("replay", func() ([]byte, error) {
			return p.store.Load(day)
		})
		if err != nil {
			return err
		}
	} else {
		raw, err = p.timed("fetch", func() ([]byte, error) {
			return p.fetcher.Fetch(ctx, day)
		})
		if err != nil {
			return err
		}
		if _, err = p.timed("persist", func() ([]byte, error) {
			path, saveErr := p.store.Save(day, raw)
			if saveErr == nil {
				logger.Debug("payload persisted", "path", path)
			}
			return nil, saveErr
		}); err != nil {
			return err
		}
	}

	start := time.Now()
	payload, err := domain.ParsePayload(raw)
	if err != nil {
		return err
	}
	readings, err := domain.EnrichPayload(payload, p.city, meta)
	if err != nil {
		return err
	}
	p.metrics.StageDuration.WithLabelValues("enrich").Observe(time.Since(start).Seconds())
	logger.Info("payload enriched", "rows", len(readings))

	start = time.Now()
	if err := p.loader.Upsert(ctx, readings); err != nil {
		return err
	}
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
	p.metrics.RowsLoaded.Add(float64(len(readings)))

	start = time.Now()
	report, err := p.gate.Check(ctx, day)
	if err != nil {
		return err
	}
	p.metrics.StageDuration.WithLabelValues("quality").Observe(time.Since(start).Seconds())
	p.lastReport.Store(&report)
	for _, v := range report.Violations {
		p.metrics.QualityViolations.WithLabelValues(v.Check).Inc()
	}
	if !report.Passed() {
		return &domain.QualityError{Report: report}
	}
	return nil
}

// timed runs one byte-producing stage and records its duration.
func (p *Pipeline) timed(stage string, fn func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	out, err := fn()
	if err != nil {
		return nil, err
	}
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return out, nil
}

// outcome maps a run error to its metrics label.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch {
	case errors.As(err, new(*domain.FetchError)):
		return "fetch_error"
	case errors.As(err, new(*domain.NotFoundError)):
		return "not_found"
	case errors.As(err, new(*domain.SchemaError)):
		return "schema_error"
	case errors.As(err, new(*domain.LoadError)):
		return "load_error"
	case errors.As(err, new(*domain.QualityError)):
		return "quality_failure"
	default:
		return "error"
	}
}
