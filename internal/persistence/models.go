package persistence

import "time"

// Assignment binds a user to an inclusive date window of on-call
// responsibility. Start and End carry a civil date at UTC midnight; the
// stored order of assignments is semantically significant (first match wins
// at resolution time).
type Assignment struct {
	UserID string
	Start  time.Time
	End    time.Time
}

// Equal reports structural equality on (UserID, Start, End). This is the
// comparison the reconciler uses to detect drift between the resolved
// assignment and the last-published one.
func (a Assignment) Equal(other Assignment) bool {
	return a.UserID == other.UserID && a.Start.Equal(other.Start) && a.End.Equal(other.End)
}

// Contains reports whether the civil date day falls inside the assignment
// window. Bounds are inclusive, so a single-day assignment (Start == End) is
// active on that day.
func (a Assignment) Contains(day time.Time) bool {
	return !day.Before(a.Start) && !day.After(a.End)
}

// CycleRecord is one reconciliation cycle as recorded in the audit journal.
type CycleRecord struct {
	ID             string
	RanAt          time.Time
	Outcome        string
	UserID         string
	WindowStart    time.Time
	WindowEnd      time.Time
	PreviousUserID string
}

// Outcome values recorded for a reconciliation cycle.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
)
