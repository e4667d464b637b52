// Command dqcheck re-runs the data-quality gate against rows already in the
// analytical table, without fetching or loading anything. It audits a single
// date or an inclusive date range and exits non-zero if any date fails.
//
// Usage:
//
//	go run ./cmd/dqcheck -date 2024-01-01
//	go run ./cmd/dqcheck -from 2024-01-01 -to 2024-01-07
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/quietmarsh/air-quality-elt/internal/adapter/sqlite"
	"github.com/quietmarsh/air-quality-elt/internal/config"
	"github.com/quietmarsh/air-quality-elt/internal/domain"
	"github.com/quietmarsh/air-quality-elt/internal/observability"
	"github.com/quietmarsh/air-quality-elt/internal/quality"
)

func main() {
	dateFlag := flag.String("date", "", "single date to audit (YYYY-MM-DD)")
	fromFlag := flag.String("from", "", "start of date range, inclusive (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "end of date range, inclusive (YYYY-MM-DD)")
	flag.Parse()

	days, err := resolveDays(*dateFlag, *fromFlag, *toFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(days); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(days []time.Time) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlite.Close(db) //nolint:errcheck // read-only audit

	loader, err := sqlite.NewLoader(db, cfg.Table, logger)
	if err != nil {
		return err
	}
	gate := quality.NewGate(loader, logger)

	failed := 0
	for _, day := range days {
		report, err := gate.Check(context.Background(), day)
		if err != nil {
			return fmt.Errorf("check %s: %w", day.Format(domain.DateFormat), err)
		}
		if report.Passed() {
			fmt.Printf("PASS  %s  %d rows\n", day.Format(domain.DateFormat), report.Rows)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s  %d rows\n", day.Format(domain.DateFormat), report.Rows)
		for _, v := range report.Violations {
			fmt.Printf("      %s\n", v)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d dates failed quality checks", failed, len(days))
	}
	return nil
}

// resolveDays expands the flag combination into the list of dates to audit.
// Exactly one of -date or -from/-to must be given.
func resolveDays(date, from, to string) ([]time.Time, error) {
	switch {
	case date != "" && (from != "" || to != ""):
		return nil, fmt.Errorf("-date cannot be combined with -from/-to")
	case date != "":
		d, err := time.Parse(domain.DateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("invalid -date: %w", err)
		}
		return []time.Time{domain.Midnight(d)}, nil
	case from == "" || to == "":
		return nil, fmt.Errorf("need -date, or both -from and -to")
	}

	start, err := time.Parse(domain.DateFormat, from)
	if err != nil {
		return nil, fmt.Errorf("invalid -from: %w", err)
	}
	end, err := time.Parse(domain.DateFormat, to)
	if err != nil {
		return nil, fmt.Errorf("invalid -to: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("-to is before -from")
	}

	var days []time.Time
	for d := domain.Midnight(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
