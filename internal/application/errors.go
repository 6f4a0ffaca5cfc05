package application

import "errors"

var (
	// ErrPagingNotConfigured is returned when a reconciliation needs a
	// paging-directory update but no client is configured.
	ErrPagingNotConfigured = errors.New("application: paging directory not configured")
	// ErrJournalNotConfigured is returned when cycle history is requested
	// without an audit journal.
	ErrJournalNotConfigured = errors.New("application: audit journal not configured")
)

// ValidationError captures field level validation issues on an assignment
// insert that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
