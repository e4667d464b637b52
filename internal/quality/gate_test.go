package quality_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
	"github.com/quietmarsh/air-quality-elt/internal/quality"
)

var testDay = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type stubSource struct {
	rows []domain.Reading
	err  error
}

func (s *stubSource) ReadDay(context.Context, time.Time) ([]domain.Reading, error) {
	return s.rows, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func fullDay() []domain.Reading {
	rows := make([]domain.Reading, 0, 24)
	for h := 0; h < 24; h++ {
		rows = append(rows, domain.Reading{
			Timestamp:    testDay.Add(time.Duration(h) * time.Hour),
			Pm10:         ptr(12),
			Pm25:         ptr(6),
			UVIndex:      ptr(3),
			Latitude:     ptr(48.8566),
			Longitude:    ptr(2.3522),
			Timezone:     "UTC",
			City:         "Paris",
			LogicalDate:  testDay,
			RunTimestamp: testDay.Add(25 * time.Hour),
		})
	}
	return rows
}

func checkNames(report domain.QualityReport) []string {
	names := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		names = append(names, v.Check)
	}
	return names
}

func TestGate_Check_Passes(t *testing.T) {
	g := quality.NewGate(&stubSource{rows: fullDay()}, discardLogger())

	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, 24, report.Rows)
	assert.NoError(t, report.Err())
}

func TestGate_Check_CompletenessBoundary(t *testing.T) {
	// 23 distinct timestamps fail, 24 pass.
	g := quality.NewGate(&stubSource{rows: fullDay()[:23]}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Contains(t, checkNames(report), domain.CheckCompleteness)

	g = quality.NewGate(&stubSource{rows: fullDay()}, discardLogger())
	report, err = g.Check(context.Background(), testDay)
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestGate_Check_DuplicateTimestamps(t *testing.T) {
	rows := fullDay()
	rows[7].Timestamp = rows[6].Timestamp

	g := quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	// 24 rows but only 23 distinct hours.
	assert.False(t, report.Passed())
	assert.Contains(t, checkNames(report), domain.CheckCompleteness)
}

func TestGate_Check_NullValues(t *testing.T) {
	rows := fullDay()
	rows[3].Pm25 = nil
	rows[9].City = ""

	g := quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	require.False(t, report.Passed())

	details := report.Err().Error()
	assert.Contains(t, details, "pm2_5: 1 null")
	assert.Contains(t, details, "city: 1 null")
}

func TestGate_Check_RangeBoundary(t *testing.T) {
	// pm10 == 500 is within range.
	rows := fullDay()
	rows[0].Pm10 = ptr(500)
	g := quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	assert.True(t, report.Passed())

	// pm10 == 500.01 is not.
	rows = fullDay()
	rows[0].Pm10 = ptr(500.01)
	g = quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err = g.Check(context.Background(), testDay)
	require.NoError(t, err)
	require.False(t, report.Passed())
	assert.Contains(t, checkNames(report), domain.CheckRange)
}

func TestGate_Check_NegativeValues(t *testing.T) {
	rows := fullDay()
	rows[0].UVIndex = ptr(-0.5)

	g := quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)
	require.False(t, report.Passed())
	assert.Contains(t, report.Err().Error(), "uv_index")
}

func TestGate_Check_ReportsEveryFailingCheck(t *testing.T) {
	rows := fullDay()[:20]
	rows[0].Pm10 = nil
	rows[1].Pm25 = ptr(9000)

	g := quality.NewGate(&stubSource{rows: rows}, discardLogger())
	report, err := g.Check(context.Background(), testDay)
	require.NoError(t, err)

	names := checkNames(report)
	assert.Contains(t, names, domain.CheckCompleteness)
	assert.Contains(t, names, domain.CheckNotNull)
	assert.Contains(t, names, domain.CheckRange)
}

func TestGate_Check_ReadFailure(t *testing.T) {
	readErr := &domain.LoadError{Op: "read", Err: errors.New("disk gone")}
	g := quality.NewGate(&stubSource{err: readErr}, discardLogger())

	_, err := g.Check(context.Background(), testDay)
	var loadErr *domain.LoadError
	assert.ErrorAs(t, err, &loadErr)
}
