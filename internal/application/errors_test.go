package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/marcelomgarcia/oncall/internal/directory"
	"github.com/marcelomgarcia/oncall/internal/paging"
	"github.com/marcelomgarcia/oncall/internal/persistence"
	"github.com/marcelomgarcia/oncall/internal/resolution"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"start": "in the past"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !(&ValidationError{FieldErrors: map[string]string{"user": "unknown"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":                  {err: nil, want: ""},
		"no active assignment": {err: fmt.Errorf("cycle: %w", resolution.ErrNoActiveAssignment), want: "no_active_assignment"},
		"not initialized":      {err: persistence.ErrNotInitialized, want: "not_initialized"},
		"unknown user":         {err: fmt.Errorf("%w: mallory", directory.ErrUnknownUser), want: "unknown_user"},
		"paging unconfigured":  {err: ErrPagingNotConfigured, want: "not_configured"},
		"validation":           {err: &ValidationError{FieldErrors: map[string]string{"user": "unknown"}}, want: "validation"},
		"schedule parse":       {err: &persistence.RecordError{Path: "sched", Line: 2}, want: "schedule_parse"},
		"remote api":           {err: &paging.APIError{Action: "edit_users", Code: 1}, want: "remote_api"},
		"unexpected":           {err: errors.New("disk on fire"), want: "unexpected"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
