// Package domain models hourly air-quality readings for a single fixed site.
//
// # Data Source
//
// Readings come from the Open-Meteo Air Quality API
// (https://air-quality-api.open-meteo.com/v1/air-quality), queried once per
// logical date with the site coordinates, hourly=pm10,pm2_5,uv_index, and a
// start_date/end_date range of exactly that date. The response carries the
// echoed site metadata plus an "hourly" block of parallel arrays: one array
// of timestamps and one array per metric, index-aligned.
//
// # Conventions
//
// Timestamps:
//
//	Hourly timestamps arrive as "2006-01-02T15:04" strings in the requested
//	timezone (UTC here). A full day is 24 entries, 00:00 through 23:00.
//	RFC 3339 timestamps are also accepted when replaying payloads produced
//	by other tooling.
//
// Null values:
//
//	The API reports JSON null for hours it has no data for, so metric values
//	are nullable throughout. Nulls pass through enrichment and loading
//	unchanged; flagging them is the data-quality gate's job, not the
//	enricher's.
//
// Logical date:
//
//	The calendar date a run is responsible for, independent of when the run
//	executes. The raw store keys files by it, the loader scopes deletes by
//	it, and each row's date column is derived from the row's own timestamp,
//	so a payload that straddles days is caught at load time.
//
// Units are passed through from the source unmodified: pm10 and pm2_5 in
// µg/m³, uv_index on the dimensionless 0–11+ UV scale.
package domain
