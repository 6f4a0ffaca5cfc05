package testfixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	require.Equal(t, ReferenceTime(), clock.Now(), "zero start falls back to the reference time")

	updated := clock.Advance(48 * time.Hour)
	require.Equal(t, ReferenceTime().Add(48*time.Hour), updated)
	require.Equal(t, updated, clock.Now())

	target := MustDate("2024-06-01")
	clock.Set(target)
	require.Equal(t, target, clock.Now())
}

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("cycle")
	require.Equal(t, "cycle-1", gen.Next())
	require.Equal(t, "cycle-2", gen.Next())

	next := gen.NextFunc()
	require.Equal(t, "cycle-3", next())
}
