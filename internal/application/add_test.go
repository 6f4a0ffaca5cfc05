package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcelomgarcia/oncall/internal/application"
	"github.com/marcelomgarcia/oncall/internal/persistence"
	"github.com/marcelomgarcia/oncall/internal/testfixtures"
)

func TestAddAssignment(t *testing.T) {
	t.Parallel()

	// Clock reference is 2024-02-15.
	h := newHarness(t, testfixtures.NewCurrentStateStore())
	ctx := context.Background()

	added, err := h.service.AddAssignment(ctx, "alice", testfixtures.MustDate("2024-03-01"), testfixtures.MustDate("2024-03-31"))
	require.NoError(t, err)
	require.Equal(t, "alice", added.UserID)

	assignments, err := h.schedule.List(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	require.True(t, assignments[2].Equal(added), "new entries are appended, order preserved")
}

func TestAddAssignment_StartingTodayIsAllowed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())

	_, err := h.service.AddAssignment(context.Background(), "bob", testfixtures.MustDate("2024-02-15"), testfixtures.MustDate("2024-02-20"))
	require.NoError(t, err)
}

func TestAddAssignment_TruncatesInstantsToCivilDates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())

	start := time.Date(2024, time.March, 1, 17, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 2, 0, 0, 0, time.UTC)
	added, err := h.service.AddAssignment(context.Background(), "alice", start, end)
	require.NoError(t, err)
	require.Equal(t, testfixtures.MustDate("2024-03-01"), added.Start)
	require.Equal(t, testfixtures.MustDate("2024-03-10"), added.End)
}

func TestAddAssignment_Rejections(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		user       string
		start, end string
		field      string
	}{
		"unknown user":   {user: "mallory", start: "2024-03-01", end: "2024-03-05", field: "user"},
		"start in past":  {user: "alice", start: "2020-01-01", end: "2020-01-05", field: "start"},
		"inverted range": {user: "alice", start: "2024-05-10", end: "2024-05-01", field: "end"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, testfixtures.NewCurrentStateStore())
			_, err := h.service.AddAssignment(context.Background(), tc.user, testfixtures.MustDate(tc.start), testfixtures.MustDate(tc.end))

			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Contains(t, vErr.FieldErrors, tc.field)

			assignments, listErr := h.schedule.List(context.Background())
			require.NoError(t, listErr)
			require.Len(t, assignments, 2, "rejected entries must not be appended")
		})
	}
}

func TestAddAssignment_OverlapIsLegal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())
	ctx := context.Background()

	_, err := h.service.AddAssignment(ctx, "alice", testfixtures.MustDate("2024-03-01"), testfixtures.MustDate("2024-03-10"))
	require.NoError(t, err)
	_, err = h.service.AddAssignment(ctx, "bob", testfixtures.MustDate("2024-03-05"), testfixtures.MustDate("2024-03-15"))
	require.NoError(t, err, "overlapping windows are accepted; resolution order decides the winner")
}

func TestCurrentHolder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStoreWith(
		testfixtures.Assignment("alice", "2024-01-01", "2024-01-31"),
	))

	holder, err := h.service.CurrentHolder(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Alice Anderson", holder.User.Name)
	require.Equal(t, testfixtures.MustDate("2024-01-01"), holder.Start)
}

func TestCurrentHolder_NotInitialized(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())

	_, err := h.service.CurrentHolder(context.Background())
	require.ErrorIs(t, err, persistence.ErrNotInitialized)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())
	ctx := context.Background()

	_, err := h.service.Reconcile(ctx)
	require.NoError(t, err)
	_, err = h.service.Reconcile(ctx)
	require.NoError(t, err)

	records, err := h.service.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, persistence.OutcomeUnchanged, records[0].Outcome, "newest first")
	require.Equal(t, persistence.OutcomeChanged, records[1].Outcome)
}

func TestHistory_JournalNotConfigured(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testfixtures.NewCurrentStateStore())
	service := application.NewOncallService(
		h.schedule, h.current, h.directory, h.paging, h.publisher, nil,
		nil, h.clock.NowFunc(),
	)

	_, err := service.History(context.Background(), 10)
	require.ErrorIs(t, err, application.ErrJournalNotConfigured)
}
