package report

import "fmt"

// DataFormatError reports input that is not a parseable report: the
// top-level value is not an object, or its items field is not an array.
// It is fatal to the single parse call that produced it and is never
// silently defaulted.
type DataFormatError struct {
	Reason string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("report data format: %s", e.Reason)
}

// ValidationError records an out-of-contract scalar that was locally
// corrected to a safe default rather than raised, keeping aggregation
// resilient to partially-malformed upstream data. Corrections are
// collected on the parsed report for inspection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}
