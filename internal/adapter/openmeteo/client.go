// Package openmeteo fetches hourly air-quality payloads from the Open-Meteo
// Air Quality API.
package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// hourlyMetrics is the fixed metric set requested per run.
const hourlyMetrics = "pm10,pm2_5,uv_index"

// Client issues one GET per run and returns the verbatim response body.
// It implements pipeline.Fetcher.
//
// There are no internal retries: the orchestrator owns retry and backoff. A
// circuit breaker still guards the upstream so a daemon doing daily runs and
// backfills stops hammering a failing API.
type Client struct {
	baseURL    string
	site       domain.Site
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo air-quality client for the given site.
func NewClient(baseURL string, site domain.Site, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		site:    site,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		logger: logger,
	}
}

// Fetch requests the 24 hours of one logical date. The returned bytes are
// the verbatim response body, validated to parse as a payload so malformed
// responses fail here rather than downstream.
func (c *Client) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	ds := domain.Midnight(day).Format(domain.DateFormat)

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(c.site.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(c.site.Longitude, 'f', -1, 64))
	params.Set("hourly", hourlyMetrics)
	params.Set("timezone", c.site.Timezone)
	params.Set("start_date", ds)
	params.Set("end_date", ds)
	fullURL := c.baseURL + "?" + params.Encode()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, fullURL)
	})
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		// Breaker rejections arrive unwrapped.
		return nil, &domain.FetchError{URL: fullURL, Err: err}
	}

	raw := result.([]byte)
	if _, err := domain.ParsePayload(raw); err != nil {
		return nil, &domain.FetchError{URL: fullURL, Err: err}
	}

	c.logger.Info("fetched air quality payload", "date", ds, "bytes", len(raw))
	return raw, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: fullURL, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: fullURL, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{
			URL:    fullURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", truncate(body, 200)),
		}
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
