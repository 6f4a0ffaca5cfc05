// Package resolution computes which on-call assignment is active for a given
// instant.
//
// Resolution scans the assignment sequence in stored order and returns the
// first assignment whose inclusive date window contains the instant's civil
// date. Overlapping windows are legal; the earliest-appended entry wins and
// later entries remain in the log for audits. A miss is a configuration
// error, never an empty result: an on-call roster must not have silent gaps.
package resolution

import (
	"errors"
	"time"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

// ErrNoActiveAssignment is returned when no assignment window contains the
// resolution instant.
var ErrNoActiveAssignment = errors.New("resolution: no active assignment")

// CivilDate truncates an instant to its civil date at UTC midnight, the
// granularity at which assignment windows are expressed.
func CivilDate(instant time.Time) time.Time {
	year, month, dayOfMonth := instant.UTC().Date()
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// Active returns the first assignment, in stored order, whose window
// contains the civil date of now. Bounds are inclusive on both ends, so an
// assignment is active on its start day, its end day, and every day between.
func Active(now time.Time, assignments []persistence.Assignment) (persistence.Assignment, error) {
	day := CivilDate(now)
	for _, assignment := range assignments {
		if assignment.Contains(day) {
			return assignment, nil
		}
	}
	return persistence.Assignment{}, ErrNoActiveAssignment
}
