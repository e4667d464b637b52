// Package quality gates each pipeline run on a fixed battery of assertions
// over the rows just loaded for a logical date.
package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// HoursPerDay is the expected row count for a complete logical date.
const HoursPerDay = 24

// Metric range limits, from the upstream measurement scales.
const (
	maxParticulate = 500.0
	maxUVIndex     = 15.0
)

// ReadingSource provides the loaded rows for one logical date.
type ReadingSource interface {
	ReadDay(ctx context.Context, day time.Time) ([]domain.Reading, error)
}

// Gate evaluates every check independently and reports all violations, never
// just the first. It only reads: it never drops rows or corrects values, and
// it runs strictly after the loader's commit, so a failing date stays
// visible until the next successful run.
type Gate struct {
	source ReadingSource
	logger *slog.Logger
}

// NewGate creates a Gate reading through the given source.
func NewGate(source ReadingSource, logger *slog.Logger) *Gate {
	return &Gate{source: source, logger: logger}
}

// Check reads back one logical date and evaluates completeness, not-null,
// and range. The error return is reserved for read failures; check outcomes
// live in the report.
func (g *Gate) Check(ctx context.Context, day time.Time) (domain.QualityReport, error) {
	day = domain.Midnight(day)
	rows, err := g.source.ReadDay(ctx, day)
	if err != nil {
		return domain.QualityReport{}, err
	}

	report := domain.QualityReport{LogicalDate: day, Rows: len(rows)}
	report.Violations = append(report.Violations, checkCompleteness(rows)...)
	report.Violations = append(report.Violations, checkNotNull(rows)...)
	report.Violations = append(report.Violations, checkRange(rows)...)

	if report.Passed() {
		g.logger.Info("quality checks passed", "date", day.Format(domain.DateFormat), "rows", len(rows))
	} else {
		g.logger.Error("quality checks failed",
			"date", day.Format(domain.DateFormat), "rows", len(rows), "violations", len(report.Violations))
	}
	return report, nil
}

// checkCompleteness: 24 rows and 24 distinct timestamps.
func checkCompleteness(rows []domain.Reading) []domain.Violation {
	var violations []domain.Violation
	if len(rows) != HoursPerDay {
		violations = append(violations, domain.Violation{
			Check:  domain.CheckCompleteness,
			Detail: fmt.Sprintf("row count %d, want %d", len(rows), HoursPerDay),
		})
	}

	distinct := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		distinct[r.Timestamp.Unix()] = struct{}{}
	}
	if len(distinct) != HoursPerDay {
		violations = append(violations, domain.Violation{
			Check:  domain.CheckCompleteness,
			Detail: fmt.Sprintf("distinct timestamps %d, want %d", len(distinct), HoursPerDay),
		})
	}
	return violations
}

// checkNotNull: none of the critical columns may be null (or empty, for the
// string columns) on any row. Reported per column with a count, matching how
// an analyst would triage it.
func checkNotNull(rows []domain.Reading) []domain.Violation {
	nulls := map[string]int{}
	for _, r := range rows {
		if r.Pm10 == nil {
			nulls["pm10"]++
		}
		if r.Pm25 == nil {
			nulls["pm2_5"]++
		}
		if r.UVIndex == nil {
			nulls["uv_index"]++
		}
		if r.Latitude == nil {
			nulls["latitude"]++
		}
		if r.Longitude == nil {
			nulls["longitude"]++
		}
		if r.Timezone == "" {
			nulls["timezone"]++
		}
		if r.City == "" {
			nulls["city"]++
		}
	}

	var violations []domain.Violation
	for _, col := range []string{"pm10", "pm2_5", "uv_index", "latitude", "longitude", "timezone", "city"} {
		if n := nulls[col]; n > 0 {
			violations = append(violations, domain.Violation{
				Check:  domain.CheckNotNull,
				Detail: fmt.Sprintf("%s: %d null values", col, n),
			})
		}
	}
	return violations
}

// checkRange: 0 <= pm10 <= 500, 0 <= pm2_5 <= 500, 0 <= uv_index <= 15.
// Nulls are the not-null check's finding, not this one's.
func checkRange(rows []domain.Reading) []domain.Violation {
	outside := map[string]int{}
	for _, r := range rows {
		if r.Pm10 != nil && (*r.Pm10 < 0 || *r.Pm10 > maxParticulate) {
			outside["pm10"]++
		}
		if r.Pm25 != nil && (*r.Pm25 < 0 || *r.Pm25 > maxParticulate) {
			outside["pm2_5"]++
		}
		if r.UVIndex != nil && (*r.UVIndex < 0 || *r.UVIndex > maxUVIndex) {
			outside["uv_index"]++
		}
	}

	limits := map[string]float64{"pm10": maxParticulate, "pm2_5": maxParticulate, "uv_index": maxUVIndex}
	var violations []domain.Violation
	for _, col := range []string{"pm10", "pm2_5", "uv_index"} {
		if n := outside[col]; n > 0 {
			violations = append(violations, domain.Violation{
				Check:  domain.CheckRange,
				Detail: fmt.Sprintf("%s: %d values outside [0, %g]", col, n, limits[col]),
			})
		}
	}
	return violations
}
