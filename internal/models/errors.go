package models

import "fmt"

// ErrorKind classifies failures caught at the source adapter boundary.
type ErrorKind string

const (
	ErrConnectionFailure ErrorKind = "connection_failure"
	ErrMissingFile       ErrorKind = "missing_file"
	ErrMalformedSchema   ErrorKind = "malformed_schema"
	ErrParseFailure      ErrorKind = "parse_failure"
)

// DataUnavailableError is the single error surfaced past the source adapter.
// Every failure kind is converted into one of these plus an empty table;
// nothing else propagates to the presentation layer.
type DataUnavailableError struct {
	Kind ErrorKind
	Err  error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data unavailable (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("data unavailable (%s)", e.Kind)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether a retry could plausibly succeed.
func (e *DataUnavailableError) IsTransient() bool {
	return e.Kind == ErrConnectionFailure
}

// ValidationError represents a per-record data validation error.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent.
func (e *ValidationError) IsTransient() bool {
	return false
}
