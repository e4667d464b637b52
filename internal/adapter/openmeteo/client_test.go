package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

var testDay = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func testSite() domain.Site {
	return domain.Site{Latitude: 48.8566, Longitude: 2.3522, City: "Paris", Timezone: "UTC"}
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testSite(), 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func samplePayload(t *testing.T, hours int) []byte {
	t.Helper()
	h := domain.HourlyBlock{}
	for i := 0; i < hours; i++ {
		ts := testDay.Add(time.Duration(i) * time.Hour)
		v := 10.0 + float64(i)
		h.Time = append(h.Time, ts.Format(domain.HourlyLayout))
		h.Pm10 = append(h.Pm10, &v)
		h.Pm25 = append(h.Pm25, &v)
		h.UVIndex = append(h.UVIndex, &v)
	}
	lat, lon := 48.8566, 2.3522
	raw, err := json.Marshal(domain.RawPayload{
		Latitude: &lat, Longitude: &lon, Timezone: "UTC", Hourly: &h,
	})
	require.NoError(t, err)
	return raw
}

func TestClient_Fetch_Success(t *testing.T) {
	body := samplePayload(t, 24)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "48.8566", q.Get("latitude"))
		assert.Equal(t, "2.3522", q.Get("longitude"))
		assert.Equal(t, "pm10,pm2_5,uv_index", q.Get("hourly"))
		assert.Equal(t, "UTC", q.Get("timezone"))
		assert.Equal(t, "2024-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-01-01", q.Get("end_date"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Fetch(context.Background(), testDay)
	require.NoError(t, err)
	// Verbatim body: byte-identical to what the server sent.
	assert.Equal(t, body, raw)
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)

	var schemaErr *domain.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestClient_Fetch_MissingHourlyBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 48.8566, "longitude": 2.3522}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), testDay)
	var fetchErr *domain.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestClient_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).Fetch(context.Background(), testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.Status)
}

func TestClient_Fetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	var lastErr error
	// gobreaker's default trips after 5 consecutive failures.
	for i := 0; i < 7; i++ {
		_, lastErr = c.Fetch(context.Background(), testDay)
		require.Error(t, lastErr)
	}

	var fetchErr *domain.FetchError
	require.ErrorAs(t, lastErr, &fetchErr)
	assert.ErrorIs(t, lastErr, gobreaker.ErrOpenState)
}
