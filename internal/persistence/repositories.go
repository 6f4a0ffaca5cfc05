package persistence

import "context"

// ScheduleRepository is the durable, ordered record of all on-call windows.
// The repository owns the on-disk representation exclusively; callers receive
// an immutable snapshot per load.
type ScheduleRepository interface {
	// Append durably writes one assignment record. Validation is the
	// caller's responsibility; the repository stores whatever it is given.
	Append(ctx context.Context, assignment Assignment) error
	// List returns the full ordered sequence of assignments. A malformed
	// record fails the whole load with a *RecordError.
	List(ctx context.Context) ([]Assignment, error)
}

// CurrentStateRepository persists the single record of the last-published
// active assignment.
type CurrentStateRepository interface {
	// Current returns the last-published assignment. ErrNotInitialized is
	// returned when no record has ever been written; a *RecordError signals
	// corruption.
	Current(ctx context.Context) (Assignment, error)
	// SetCurrent atomically replaces the singleton record.
	SetCurrent(ctx context.Context, assignment Assignment) error
}

// AuditJournal records the outcome of reconciliation cycles.
type AuditJournal interface {
	RecordCycle(ctx context.Context, record CycleRecord) error
	ListCycles(ctx context.Context, limit int) ([]CycleRecord, error)
}
