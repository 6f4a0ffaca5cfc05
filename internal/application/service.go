// Package application orchestrates the on-call reconciliation cycle and the
// validated operations around it.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelomgarcia/oncall/internal/directory"
	"github.com/marcelomgarcia/oncall/internal/persistence"
	"github.com/marcelomgarcia/oncall/internal/resolution"
)

// UserDirectory exposes the contact lookups the service needs.
type UserDirectory interface {
	Lookup(id string) (directory.User, error)
	Contains(id string) bool
	UserIDs() []string
}

// PagingDirectory toggles a user's membership in the on-call contact group
// on the remote paging system and commits pending edits.
type PagingDirectory interface {
	SetMembership(ctx context.Context, userID string, onCall bool) error
	ActivateChanges(ctx context.Context) error
}

// StatusPublisher renders and persists the operator-facing status artifact.
type StatusPublisher interface {
	Publish(ctx context.Context, holder Holder) error
}

// Holder is the active on-call person joined with their assignment window.
type Holder struct {
	User  directory.User
	Start time.Time
	End   time.Time
}

// ReconcileResult reports the outcome of one reconciliation cycle.
type ReconcileResult struct {
	// Changed is true when the resolved assignment differed from the
	// last-published one and side effects were issued.
	Changed bool
	// UserChanged is true when the holder's identity changed, not just the
	// window, so the paging directory was updated.
	UserChanged bool
	// FirstRun is true when no current state existed before this cycle.
	FirstRun bool
	// Holder is the active holder after the cycle, for display.
	Holder Holder
	// Previous is the assignment published before this cycle, when any.
	Previous *persistence.Assignment
	// CycleID identifies the audit journal row, when a journal is wired.
	CycleID string
}

// OncallService wires the stores, the directory and the side-effect clients
// into the reconciliation core.
type OncallService struct {
	schedule    persistence.ScheduleRepository
	current     persistence.CurrentStateRepository
	users       UserDirectory
	paging      PagingDirectory
	publisher   StatusPublisher
	journal     persistence.AuditJournal
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewOncallService wires dependencies for the on-call operations. The paging
// directory and the audit journal may be nil; operations requiring them fail
// with ErrPagingNotConfigured and ErrJournalNotConfigured respectively.
func NewOncallService(
	schedule persistence.ScheduleRepository,
	current persistence.CurrentStateRepository,
	users UserDirectory,
	paging PagingDirectory,
	publisher StatusPublisher,
	journal persistence.AuditJournal,
	idGenerator func() string,
	now func() time.Time,
) *OncallService {
	return NewOncallServiceWithLogger(schedule, current, users, paging, publisher, journal, idGenerator, now, nil)
}

// NewOncallServiceWithLogger is NewOncallService with an explicit logger.
func NewOncallServiceWithLogger(
	schedule persistence.ScheduleRepository,
	current persistence.CurrentStateRepository,
	users UserDirectory,
	paging PagingDirectory,
	publisher StatusPublisher,
	journal persistence.AuditJournal,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *OncallService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &OncallService{
		schedule:    schedule,
		current:     current,
		users:       users,
		paging:      paging,
		publisher:   publisher,
		journal:     journal,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// AddAssignment validates and appends a new on-call window to the schedule.
// The schedule is an append-only log; entries are never edited or removed.
func (s *OncallService) AddAssignment(ctx context.Context, userID string, start, end time.Time) (persistence.Assignment, error) {
	logger := serviceLogger(ctx, s.logger, "add_assignment", "user", userID)

	start = resolution.CivilDate(start)
	end = resolution.CivilDate(end)
	today := resolution.CivilDate(s.now())

	vErr := &ValidationError{}
	if !s.users.Contains(userID) {
		vErr.add("user", fmt.Sprintf("unknown user %q, valid users are: %s", userID, strings.Join(s.users.UserIDs(), ", ")))
	}
	if start.Before(today) {
		vErr.add("start", "on-call cannot start in the past")
	}
	if start.After(end) {
		vErr.add("end", "on-call cannot end before it starts")
	}
	if vErr.HasErrors() {
		logger.Warn("assignment rejected", "fields", vErr.FieldErrors)
		return persistence.Assignment{}, vErr
	}

	assignment := persistence.Assignment{UserID: userID, Start: start, End: end}
	if err := s.schedule.Append(ctx, assignment); err != nil {
		logger.Error("failed to append assignment", "error", err)
		return persistence.Assignment{}, err
	}

	logger.Info("assignment added", "start", start.Format(time.DateOnly), "end", end.Format(time.DateOnly))
	return assignment, nil
}

// CurrentHolder returns the last-published holder with contact details, for
// display. It reflects what the system told the world, which may lag behind
// the schedule until the next reconciliation.
func (s *OncallService) CurrentHolder(ctx context.Context) (Holder, error) {
	current, err := s.current.Current(ctx)
	if err != nil {
		return Holder{}, err
	}
	user, err := s.users.Lookup(current.UserID)
	if err != nil {
		return Holder{}, err
	}
	return Holder{User: user, Start: current.Start, End: current.End}, nil
}

// History returns the most recent reconciliation cycles from the audit
// journal, newest first.
func (s *OncallService) History(ctx context.Context, limit int) ([]persistence.CycleRecord, error) {
	if s.journal == nil {
		return nil, ErrJournalNotConfigured
	}
	return s.journal.ListCycles(ctx, limit)
}

// Reconcile runs one reconciliation cycle: resolve the active assignment for
// now, compare it to the last-published state and issue side effects only on
// drift. Repeated invocations with no time passed and no schedule change are
// a no-op after the first.
//
// Side effects are sequenced step-wise, not transactionally: current state
// first, then the status page, then the paging directory. A failure aborts
// the cycle without rolling back earlier writes; the next cycle's comparison
// self-heals the drift.
func (s *OncallService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	logger := serviceLogger(ctx, s.logger, "reconcile")
	now := s.now()

	assignments, err := s.schedule.List(ctx)
	if err != nil {
		logger.Error("failed to load schedule", "error", err, "kind", ErrorKind(err))
		return ReconcileResult{}, err
	}

	active, err := resolution.Active(now, assignments)
	if err != nil {
		// A gap in on-call coverage is a fatal configuration error.
		logger.Error("no active assignment", "error", err, "date", resolution.CivilDate(now).Format(time.DateOnly))
		return ReconcileResult{}, err
	}

	user, err := s.users.Lookup(active.UserID)
	if err != nil {
		logger.Error("resolved user missing from directory", "error", err, "user", active.UserID)
		return ReconcileResult{}, err
	}
	holder := Holder{User: user, Start: active.Start, End: active.End}

	current, err := s.current.Current(ctx)
	firstRun := false
	if err != nil {
		if !errors.Is(err, persistence.ErrNotInitialized) {
			logger.Error("failed to read current state", "error", err, "kind", ErrorKind(err))
			return ReconcileResult{}, err
		}
		firstRun = true
	}

	if !firstRun && active.Equal(current) {
		logger.Info("on-call unchanged", "user", active.UserID)
		cycleID, err := s.recordCycle(ctx, now, persistence.OutcomeUnchanged, active, "")
		if err != nil {
			logger.Error("failed to record cycle", "error", err)
			return ReconcileResult{}, err
		}
		return ReconcileResult{Holder: holder, CycleID: cycleID}, nil
	}

	result := ReconcileResult{
		Changed:  true,
		FirstRun: firstRun,
		Holder:   holder,
	}
	previousUserID := ""
	if !firstRun {
		previous := current
		result.Previous = &previous
		previousUserID = current.UserID
	}
	result.UserChanged = firstRun || previousUserID != active.UserID

	if err := s.current.SetCurrent(ctx, active); err != nil {
		logger.Error("failed to persist current state", "error", err)
		return ReconcileResult{}, err
	}

	if err := s.publisher.Publish(ctx, holder); err != nil {
		logger.Error("failed to publish status page", "error", err)
		return ReconcileResult{}, err
	}

	if result.UserChanged {
		if err := s.updatePaging(ctx, logger, active.UserID, previousUserID); err != nil {
			return ReconcileResult{}, err
		}
	}

	cycleID, err := s.recordCycle(ctx, now, persistence.OutcomeChanged, active, previousUserID)
	if err != nil {
		logger.Error("failed to record cycle", "error", err)
		return ReconcileResult{}, err
	}
	result.CycleID = cycleID

	logger.Info("on-call updated",
		"user", active.UserID,
		"previous_user", previousUserID,
		"user_changed", result.UserChanged,
		"first_run", firstRun,
	)
	return result, nil
}

// updatePaging adds the new holder to the on-call contact group before
// removing the previous one, so there is never an instant with zero active
// on-call contacts, then commits both edits with a single activation.
func (s *OncallService) updatePaging(ctx context.Context, logger *slog.Logger, newUserID, previousUserID string) error {
	if s.paging == nil {
		logger.Error("paging directory required but not configured")
		return ErrPagingNotConfigured
	}

	if err := s.paging.SetMembership(ctx, newUserID, true); err != nil {
		logger.Error("failed to add user to contact group", "error", err, "user", newUserID, "kind", ErrorKind(err))
		return err
	}
	if previousUserID != "" && previousUserID != newUserID {
		if err := s.paging.SetMembership(ctx, previousUserID, false); err != nil {
			logger.Error("failed to remove user from contact group", "error", err, "user", previousUserID, "kind", ErrorKind(err))
			return err
		}
	}
	if err := s.paging.ActivateChanges(ctx); err != nil {
		logger.Error("failed to activate paging changes", "error", err, "kind", ErrorKind(err))
		return err
	}
	return nil
}

func (s *OncallService) recordCycle(ctx context.Context, ranAt time.Time, outcome string, active persistence.Assignment, previousUserID string) (string, error) {
	if s.journal == nil {
		return "", nil
	}
	record := persistence.CycleRecord{
		ID:             s.idGenerator(),
		RanAt:          ranAt,
		Outcome:        outcome,
		UserID:         active.UserID,
		WindowStart:    active.Start,
		WindowEnd:      active.End,
		PreviousUserID: previousUserID,
	}
	if err := s.journal.RecordCycle(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}
