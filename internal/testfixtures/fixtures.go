// Package testfixtures provides deterministic clocks, identifier generators
// and in-memory collaborators for exercising the reconciliation core without
// touching the filesystem or the network.
package testfixtures

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marcelomgarcia/oncall/internal/application"
	"github.com/marcelomgarcia/oncall/internal/directory"
	"github.com/marcelomgarcia/oncall/internal/persistence"
)

// MustDate parses a YYYY-MM-DD string or panics. Fixture-only convenience.
func MustDate(value string) time.Time {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return parsed.UTC()
}

// Assignment builds an assignment record from date strings.
func Assignment(userID, start, end string) persistence.Assignment {
	return persistence.Assignment{UserID: userID, Start: MustDate(start), End: MustDate(end)}
}

// ----------------------------- Schedule store -----------------------------

// ScheduleStore is an in-memory, append-only assignment log.
type ScheduleStore struct {
	mu          sync.Mutex
	assignments []persistence.Assignment
	AppendErr   error
	ListErr     error
}

// NewScheduleStore returns a store preloaded with the given assignments.
func NewScheduleStore(assignments ...persistence.Assignment) *ScheduleStore {
	return &ScheduleStore{assignments: append([]persistence.Assignment(nil), assignments...)}
}

// Append implements persistence.ScheduleRepository.
func (s *ScheduleStore) Append(ctx context.Context, assignment persistence.Assignment) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, assignment)
	return nil
}

// List implements persistence.ScheduleRepository.
func (s *ScheduleStore) List(ctx context.Context) ([]persistence.Assignment, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]persistence.Assignment(nil), s.assignments...), nil
}

// --------------------------- Current-state store ---------------------------

// CurrentStateStore is an in-memory singleton current-state record.
type CurrentStateStore struct {
	mu          sync.Mutex
	assignment  persistence.Assignment
	initialized bool
	ReadErr     error
	WriteErr    error
}

// NewCurrentStateStore returns an uninitialized store.
func NewCurrentStateStore() *CurrentStateStore {
	return &CurrentStateStore{}
}

// NewCurrentStateStoreWith returns a store holding the given record.
func NewCurrentStateStoreWith(assignment persistence.Assignment) *CurrentStateStore {
	return &CurrentStateStore{assignment: assignment, initialized: true}
}

// Current implements persistence.CurrentStateRepository.
func (s *CurrentStateStore) Current(ctx context.Context) (persistence.Assignment, error) {
	if s.ReadErr != nil {
		return persistence.Assignment{}, s.ReadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return persistence.Assignment{}, persistence.ErrNotInitialized
	}
	return s.assignment, nil
}

// SetCurrent implements persistence.CurrentStateRepository.
func (s *CurrentStateStore) SetCurrent(ctx context.Context, assignment persistence.Assignment) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignment = assignment
	s.initialized = true
	return nil
}

// ------------------------------ User directory ------------------------------

// Directory is a static in-memory user directory.
type Directory struct {
	users map[string]directory.User
}

// NewDirectory builds a directory containing the given users.
func NewDirectory(users ...directory.User) *Directory {
	index := make(map[string]directory.User, len(users))
	for _, user := range users {
		index[user.ID] = user
	}
	return &Directory{users: index}
}

// DefaultDirectory returns a directory with the two users most fixtures use.
func DefaultDirectory() *Directory {
	return NewDirectory(
		directory.User{ID: "alice", Name: "Alice Anderson", Phone: "+49 170 0000001", Email: "alice@example.com"},
		directory.User{ID: "bob", Name: "Bob Baker", Phone: "+49 170 0000002", Email: "bob@example.com"},
	)
}

// Lookup implements application.UserDirectory.
func (d *Directory) Lookup(id string) (directory.User, error) {
	user, ok := d.users[id]
	if !ok {
		return directory.User{}, fmt.Errorf("%w: %s", directory.ErrUnknownUser, id)
	}
	return user, nil
}

// Contains implements application.UserDirectory.
func (d *Directory) Contains(id string) bool {
	_, ok := d.users[id]
	return ok
}

// UserIDs implements application.UserDirectory.
func (d *Directory) UserIDs() []string {
	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ----------------------------- Paging directory -----------------------------

// PagingCall records one request issued to the fake paging directory.
type PagingCall struct {
	Action string // "set_membership" or "activate_changes"
	UserID string
	OnCall bool
}

// PagingDirectory records membership edits and activations in order.
type PagingDirectory struct {
	mu          sync.Mutex
	calls       []PagingCall
	SetErr      error
	ActivateErr error
}

// NewPagingDirectory returns an empty recording fake.
func NewPagingDirectory() *PagingDirectory {
	return &PagingDirectory{}
}

// SetMembership implements application.PagingDirectory.
func (p *PagingDirectory) SetMembership(ctx context.Context, userID string, onCall bool) error {
	if p.SetErr != nil {
		return p.SetErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, PagingCall{Action: "set_membership", UserID: userID, OnCall: onCall})
	return nil
}

// ActivateChanges implements application.PagingDirectory.
func (p *PagingDirectory) ActivateChanges(ctx context.Context) error {
	if p.ActivateErr != nil {
		return p.ActivateErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, PagingCall{Action: "activate_changes"})
	return nil
}

// Calls returns the recorded requests in issue order.
func (p *PagingDirectory) Calls() []PagingCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PagingCall(nil), p.calls...)
}

// ----------------------------- Status publisher -----------------------------

// StatusPublisher records published holders.
type StatusPublisher struct {
	mu         sync.Mutex
	published  []application.Holder
	PublishErr error
}

// NewStatusPublisher returns an empty recording fake.
func NewStatusPublisher() *StatusPublisher {
	return &StatusPublisher{}
}

// Publish implements application.StatusPublisher.
func (s *StatusPublisher) Publish(ctx context.Context, holder application.Holder) error {
	if s.PublishErr != nil {
		return s.PublishErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, holder)
	return nil
}

// Published returns the holders published so far, in order.
func (s *StatusPublisher) Published() []application.Holder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]application.Holder(nil), s.published...)
}

// ------------------------------ Audit journal ------------------------------

// AuditJournal is an in-memory cycle journal.
type AuditJournal struct {
	mu        sync.Mutex
	records   []persistence.CycleRecord
	RecordErr error
}

// NewAuditJournal returns an empty journal.
func NewAuditJournal() *AuditJournal {
	return &AuditJournal{}
}

// RecordCycle implements persistence.AuditJournal.
func (j *AuditJournal) RecordCycle(ctx context.Context, record persistence.CycleRecord) error {
	if j.RecordErr != nil {
		return j.RecordErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	return nil
}

// ListCycles implements persistence.AuditJournal; newest first.
func (j *AuditJournal) ListCycles(ctx context.Context, limit int) ([]persistence.CycleRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := append([]persistence.CycleRecord(nil), j.records...)
	for i, jj := 0, len(out)-1; i < jj; i, jj = i+1, jj-1 {
		out[i], out[jj] = out[jj], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Records returns the journal rows in insertion order.
func (j *AuditJournal) Records() []persistence.CycleRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]persistence.CycleRecord(nil), j.records...)
}
