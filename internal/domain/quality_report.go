package domain

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Check names reported in quality violations.
const (
	CheckCompleteness = "completeness"
	CheckNotNull      = "not_null"
	CheckRange        = "range"
)

// Violation is one failing data-quality check.
type Violation struct {
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return v.Check + ": " + v.Detail
}

// QualityReport is the outcome of the data-quality gate for one logical
// date. It is ephemeral: reported to the caller, never persisted.
type QualityReport struct {
	LogicalDate time.Time
	Rows        int
	Violations  []Violation
}

// Passed reports whether every check held.
func (r QualityReport) Passed() bool {
	return len(r.Violations) == 0
}

// Err aggregates every violation into a single error, or nil when passing.
func (r QualityReport) Err() error {
	if r.Passed() {
		return nil
	}
	var merr *multierror.Error
	for _, v := range r.Violations {
		merr = multierror.Append(merr, fmt.Errorf("%s: %s", v.Check, v.Detail))
	}
	return merr.ErrorOrNil()
}
