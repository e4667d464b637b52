package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// Config holds all job settings, populated from environment variables.
// Site coordinates, storage paths, and the table name are configuration
// rather than constants so deployments can point at other sites.
type Config struct {
	// Fixed site the readings are fetched for.
	Latitude  float64
	Longitude float64
	City      string
	Timezone  string

	// Upstream API.
	BaseURL      string
	FetchTimeout time.Duration

	// Owned storage.
	RawDir string
	DBPath string
	Table  string

	// Daemon settings.
	HTTPAddr        string
	ScheduleAt      string // "HH:MM", UTC
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	lat, err := parseFloat("AQ_LATITUDE", 48.8566)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("AQ_LONGITUDE", 2.3522)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("AQ_FETCH_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Latitude:  lat,
		Longitude: lon,
		City:      envOrDefault("AQ_CITY", "Paris"),
		Timezone:  envOrDefault("AQ_TIMEZONE", "UTC"),

		BaseURL:      envOrDefault("AQ_BASE_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
		FetchTimeout: fetchTimeout,

		RawDir: envOrDefault("AQ_RAW_DIR", "data/raw/air_quality"),
		DBPath: envOrDefault("AQ_DB_PATH", "data/database/air_quality.db"),
		Table:  envOrDefault("AQ_TABLE", "air_quality_raw"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ScheduleAt:      envOrDefault("SCHEDULE_AT", "02:00"),
		ShutdownTimeout: shutdownTimeout,

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return nil, errors.New("AQ_LATITUDE must be within [-90, 90]")
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, errors.New("AQ_LONGITUDE must be within [-180, 180]")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("AQ_FETCH_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("AQ_BASE_URL is required")
	}
	if _, err := time.Parse("15:04", cfg.ScheduleAt); err != nil {
		return nil, fmt.Errorf("SCHEDULE_AT must be HH:MM: %w", err)
	}

	return cfg, nil
}

// Site returns the configured site as a domain value.
func (c *Config) Site() domain.Site {
	return domain.Site{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		City:      c.City,
		Timezone:  c.Timezone,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
