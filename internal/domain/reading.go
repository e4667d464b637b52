package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateFormat is the ISO layout used for logical dates throughout the pipeline.
const DateFormat = "2006-01-02"

// HourlyLayout is the timestamp layout of Open-Meteo hourly arrays. The API
// omits the zone suffix; timestamps are in the requested timezone.
const HourlyLayout = "2006-01-02T15:04"

// HourlyBlock holds the parallel time/value arrays of one payload. Metric
// values are pointers because the API reports null for missing hours.
type HourlyBlock struct {
	Time    []string   `json:"time"`
	Pm10    []*float64 `json:"pm10"`
	Pm25    []*float64 `json:"pm2_5"`
	UVIndex []*float64 `json:"uv_index"`
}

// RawPayload is the parsed form of one logical date's verbatim API response.
// The raw store persists the verbatim bytes, not this struct.
type RawPayload struct {
	Latitude  *float64     `json:"latitude"`
	Longitude *float64     `json:"longitude"`
	Timezone  string       `json:"timezone"`
	Hourly    *HourlyBlock `json:"hourly"`
}

// Reading is one enriched hourly row destined for the analytical table.
// Column names match the original table schema; the table name itself comes
// from configuration via the loader.
type Reading struct {
	Timestamp    time.Time `gorm:"column:time;primaryKey" json:"time"`
	Pm10         *float64  `gorm:"column:pm10" json:"pm10"`
	Pm25         *float64  `gorm:"column:pm2_5" json:"pm2_5"`
	UVIndex      *float64  `gorm:"column:uv_index" json:"uv_index"`
	Latitude     *float64  `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64  `gorm:"column:longitude" json:"longitude"`
	Timezone     string    `gorm:"column:timezone" json:"timezone"`
	City         string    `gorm:"column:city" json:"city"`
	LogicalDate  time.Time `gorm:"column:date" json:"date"`
	RunTimestamp time.Time `gorm:"column:execution_time" json:"execution_time"`
}

// TableName is the default destination table.
func (Reading) TableName() string {
	return "air_quality_raw"
}

// Site describes the fixed location readings are fetched for.
type Site struct {
	Latitude  float64
	Longitude float64
	City      string
	Timezone  string
}

// RunMetadata identifies one pipeline run: the logical date it is responsible
// for, a unique run ID for log correlation, and the execution timestamp
// stamped onto every loaded row.
type RunMetadata struct {
	LogicalDate time.Time
	RunID       string
	ExecutedAt  time.Time
}

// NewRunMetadata builds run metadata for a logical date. The execution
// timestamp comes from the package clock so tests and fixture generators can
// freeze it via SetClock.
func NewRunMetadata(day time.Time) RunMetadata {
	return RunMetadata{
		LogicalDate: Midnight(day),
		RunID:       uuid.NewString(),
		ExecutedAt:  clock.Now().UTC(),
	}
}

// Midnight truncates a time to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
