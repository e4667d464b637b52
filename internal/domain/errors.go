package domain

import "fmt"

// FetchError reports a failed API fetch: transport error, non-success status,
// or a response body that does not parse as a payload.
type FetchError struct {
	URL    string
	Status int // zero when the request never completed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports a replay request for a logical date that has no
// stored payload.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("raw payload not found: %s", e.Path)
}

// SchemaError reports a malformed or internally inconsistent payload:
// invalid JSON, a missing hourly block, mismatched array lengths, or an
// unparseable hourly timestamp.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "payload schema: " + e.Reason
}

// LoadError reports a storage-layer failure in the analytical table. The
// table is left in its pre-call state; the upsert transaction rolls back.
type LoadError struct {
	Op  string // "migrate", "upsert", or "read"
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load (%s): %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// QualityError reports a non-passing data-quality gate. The offending rows
// remain loaded: the gate runs after the loader's commit and never rolls it
// back.
type QualityError struct {
	Report QualityReport
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("quality checks failed for %s: %v",
		e.Report.LogicalDate.Format(DateFormat), e.Report.Err())
}

func (e *QualityError) Unwrap() error { return e.Report.Err() }
