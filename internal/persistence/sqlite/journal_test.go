package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := Open(context.Background(), filepath.Join(t.TempDir(), "oncall_audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func record(id string, ranAt time.Time, outcome, userID, previous string) persistence.CycleRecord {
	return persistence.CycleRecord{
		ID:             id,
		RanAt:          ranAt,
		Outcome:        outcome,
		UserID:         userID,
		WindowStart:    time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:      time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		PreviousUserID: previous,
	}
}

func TestJournal_RecordAndList(t *testing.T) {
	t.Parallel()

	journal := openJournal(t)
	ctx := context.Background()
	base := time.Date(2024, time.February, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, journal.RecordCycle(ctx, record("cycle-1", base, persistence.OutcomeChanged, "bob", "alice")))
	require.NoError(t, journal.RecordCycle(ctx, record("cycle-2", base.Add(time.Hour), persistence.OutcomeUnchanged, "bob", "")))

	records, err := journal.ListCycles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "cycle-2", records[0].ID, "newest cycle first")
	require.Equal(t, persistence.OutcomeUnchanged, records[0].Outcome)
	require.Equal(t, "cycle-1", records[1].ID)
	require.Equal(t, "alice", records[1].PreviousUserID)
	require.Equal(t, base, records[1].RanAt)
	require.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), records[1].WindowStart)
}

func TestJournal_ListLimit(t *testing.T) {
	t.Parallel()

	journal := openJournal(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		require.NoError(t, journal.RecordCycle(ctx, record("cycle-"+id, base.Add(time.Duration(i)*time.Hour), persistence.OutcomeUnchanged, "alice", "")))
	}

	records, err := journal.ListCycles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "cycle-e", records[0].ID)
	require.Equal(t, "cycle-d", records[1].ID)
}

func TestJournal_DuplicateIDRejected(t *testing.T) {
	t.Parallel()

	journal := openJournal(t)
	ctx := context.Background()
	ranAt := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, journal.RecordCycle(ctx, record("cycle-1", ranAt, persistence.OutcomeChanged, "alice", "")))
	require.Error(t, journal.RecordCycle(ctx, record("cycle-1", ranAt, persistence.OutcomeChanged, "alice", "")))
}

func TestOpen_ReopensExistingJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oncall_audit.db")

	journal, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, journal.RecordCycle(ctx, record("cycle-1", time.Now().UTC().Truncate(time.Second), persistence.OutcomeChanged, "alice", "")))
	require.NoError(t, journal.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ListCycles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
