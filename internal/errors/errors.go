package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoSources       = errors.New("no feed sources registered")
	ErrUnknownLocation = errors.New("unknown forecast location")
	ErrTimeout         = errors.New("operation timeout")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Add adds an error to the MultiError
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// FetchError represents a failure at the network/HTTP layer. DNS failures,
// timeouts, non-2xx statuses, and oversized responses all map to this one
// kind; the wrapped error carries the detail.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// ParseError represents a malformed feed document
type ParseError struct {
	Source string
	Err    error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.Source, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// ClassificationAnomaly marks an entry with unexpected structure (e.g. a
// missing title). The caller skips the entry, never the cycle.
type ClassificationAnomaly struct {
	Source string
	Reason string
}

func (e ClassificationAnomaly) Error() string {
	return fmt.Sprintf("classification anomaly in %s: %s", e.Source, e.Reason)
}
