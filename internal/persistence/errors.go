package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when the current-state record has never
	// been written. Callers distinguish this first-run condition from a
	// corrupt record, which surfaces as a *RecordError instead.
	ErrNotInitialized = errors.New("persistence: current state not initialized")
)

// RecordError reports a stored record that cannot be parsed. A single bad
// record invalidates the whole load; partial results are never returned.
type RecordError struct {
	Path string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("persistence: %s line %d: %v", e.Path, e.Line, e.Err)
}

// Unwrap exposes the underlying parse failure.
func (e *RecordError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
