package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParsePayload deserializes a verbatim API response body. It validates only
// structure, not content: a present hourly block with a timestamp array.
func ParsePayload(raw []byte) (RawPayload, error) {
	var p RawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return RawPayload{}, &SchemaError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if p.Hourly == nil {
		return RawPayload{}, &SchemaError{Reason: "hourly block missing"}
	}
	return p, nil
}

// EnrichPayload expands a payload's hourly arrays into row-shaped readings,
// attaching the site city plus run metadata to every row. One reading per
// distinct hourly timestamp, input order preserved; a duplicated timestamp
// keeps its first occurrence. Metric values pass through unchanged, nulls
// included. Each row's logical date is derived from its own timestamp.
func EnrichPayload(p RawPayload, city string, meta RunMetadata) ([]Reading, error) {
	h := p.Hourly
	if h == nil || len(h.Time) == 0 {
		return nil, &SchemaError{Reason: "hourly timestamps missing"}
	}
	if len(h.Pm10) != len(h.Time) || len(h.Pm25) != len(h.Time) || len(h.UVIndex) != len(h.Time) {
		return nil, &SchemaError{Reason: fmt.Sprintf(
			"mismatched hourly arrays: time=%d pm10=%d pm2_5=%d uv_index=%d",
			len(h.Time), len(h.Pm10), len(h.Pm25), len(h.UVIndex))}
	}

	readings := make([]Reading, 0, len(h.Time))
	seen := make(map[time.Time]struct{}, len(h.Time))
	for i, ts := range h.Time {
		t, err := parseHourly(ts)
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("bad hourly timestamp %q", ts)}
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}

		readings = append(readings, Reading{
			Timestamp:    t,
			Pm10:         h.Pm10[i],
			Pm25:         h.Pm25[i],
			UVIndex:      h.UVIndex[i],
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			Timezone:     p.Timezone,
			City:         city,
			LogicalDate:  Midnight(t),
			RunTimestamp: meta.ExecutedAt,
		})
	}
	return readings, nil
}

// parseHourly accepts the API's zone-less hourly layout and, for payloads
// produced by other tooling, RFC 3339. Either way the result is UTC.
func parseHourly(ts string) (time.Time, error) {
	if t, err := time.Parse(HourlyLayout, ts); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
