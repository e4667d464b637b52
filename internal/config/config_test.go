package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.InEpsilon(t, 48.8566, cfg.Latitude, 1e-9)
	assert.InEpsilon(t, 2.3522, cfg.Longitude, 1e-9)
	assert.Equal(t, "Paris", cfg.City)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "https://air-quality-api.open-meteo.com/v1/air-quality", cfg.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "data/raw/air_quality", cfg.RawDir)
	assert.Equal(t, "data/database/air_quality.db", cfg.DBPath)
	assert.Equal(t, "air_quality_raw", cfg.Table)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "02:00", cfg.ScheduleAt)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AQ_LATITUDE", "52.52")
	t.Setenv("AQ_LONGITUDE", "13.41")
	t.Setenv("AQ_CITY", "Berlin")
	t.Setenv("AQ_TIMEZONE", "Europe/Berlin")
	t.Setenv("AQ_BASE_URL", "http://localhost:9999/v1/air-quality")
	t.Setenv("AQ_FETCH_TIMEOUT", "5s")
	t.Setenv("AQ_RAW_DIR", "/tmp/raw")
	t.Setenv("AQ_DB_PATH", "/tmp/aq.db")
	t.Setenv("AQ_TABLE", "readings")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SCHEDULE_AT", "03:30")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InEpsilon(t, 52.52, cfg.Latitude, 1e-9)
	assert.InEpsilon(t, 13.41, cfg.Longitude, 1e-9)
	assert.Equal(t, "Berlin", cfg.City)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "http://localhost:9999/v1/air-quality", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "/tmp/raw", cfg.RawDir)
	assert.Equal(t, "/tmp/aq.db", cfg.DBPath)
	assert.Equal(t, "readings", cfg.Table)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "03:30", cfg.ScheduleAt)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Site(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	site := cfg.Site()
	assert.InEpsilon(t, cfg.Latitude, site.Latitude, 1e-9)
	assert.InEpsilon(t, cfg.Longitude, site.Longitude, 1e-9)
	assert.Equal(t, cfg.City, site.City)
	assert.Equal(t, cfg.Timezone, site.Timezone)
}

func TestLoad_InvalidLatitude(t *testing.T) {
	t.Setenv("AQ_LATITUDE", "91")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQ_LATITUDE")
}

func TestLoad_MalformedLatitude(t *testing.T) {
	t.Setenv("AQ_LATITUDE", "north")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQ_LATITUDE")
}

func TestLoad_InvalidLongitude(t *testing.T) {
	t.Setenv("AQ_LONGITUDE", "-200")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQ_LONGITUDE")
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("AQ_FETCH_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQ_FETCH_TIMEOUT")
}

func TestLoad_NegativeFetchTimeout(t *testing.T) {
	t.Setenv("AQ_FETCH_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQ_FETCH_TIMEOUT")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "nope")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidScheduleAt(t *testing.T) {
	t.Setenv("SCHEDULE_AT", "25:99")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULE_AT")
}
