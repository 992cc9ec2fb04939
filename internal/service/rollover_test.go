package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pietro-fantini/vibe-growth/internal/period"
)

func TestRolloverRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)
	current := period.Current(now)
	next, err := period.Next(current)
	require.NoError(t, err)

	f := newFixture(now)
	f.addGoal("g1", "u1", "recurring", 3)
	f.addSubgoal("sg-done-1", "g1", "u1", "one_time", 1, 1)
	f.addSubgoal("sg-done-2", "g1", "u1", "one_time", 2, 2)
	f.addSubgoal("sg-habit", "g1", "u1", "recurring", 3, 1)

	summary, err := f.rollover.Run(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DeletedSubgoals)
	assert.Equal(t, 1, summary.ResetSubgoals)
	assert.Equal(t, 1, summary.GoalsSeeded)
	assert.Equal(t, 3, summary.TotalProcessed)

	// Completed one-time subgoals are gone; the recurring habit survives.
	assert.False(t, f.subgoalRepo.subgoals["sg-done-1"].IsActive)
	assert.False(t, f.subgoalRepo.subgoals["sg-done-2"].IsActive)
	assert.True(t, f.subgoalRepo.subgoals["sg-habit"].IsActive)

	// The new period starts from explicit zeros.
	count, _ := f.subgoalLedger.Count(ctx, "sg-habit", next)
	assert.Equal(t, 0, count)
	count, _ = f.goalLedger.Count(ctx, "g1", next)
	assert.Equal(t, 0, count)

	// The ending period's history is untouched.
	count, _ = f.subgoalLedger.Count(ctx, "sg-habit", current)
	assert.Equal(t, 1, count)
}

func TestRolloverMustRunInsideTheEndingPeriod(t *testing.T) {
	ctx := context.Background()
	endOfAugust := time.Date(2024, 8, 31, 23, 0, 0, 0, time.UTC)

	t.Run("run before the boundary removes completed one-time subgoals", func(t *testing.T) {
		f := newFixture(endOfAugust)
		f.addGoal("g1", "u1", "recurring", 1)
		f.addSubgoal("sg1", "g1", "u1", "one_time", 1, 1)

		summary, err := f.rollover.Run(ctx, endOfAugust)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.DeletedSubgoals)
		assert.False(t, f.subgoalRepo.subgoals["sg1"].IsActive)
	})

	t.Run("run after the boundary cannot see the ended period's rows", func(t *testing.T) {
		f := newFixture(endOfAugust)
		f.addGoal("g1", "u1", "recurring", 1)
		f.addSubgoal("sg1", "g1", "u1", "one_time", 1, 1)

		// The job keys everything off the wall clock's period, so once
		// September starts the August ledger rows are out of scope and the
		// completed subgoal survives. The worker times its runs to avoid
		// ever landing here.
		summary, err := f.rollover.Run(ctx, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.Equal(t, 0, summary.DeletedSubgoals)
		assert.True(t, f.subgoalRepo.subgoals["sg1"].IsActive)
	})
}

func TestRolloverSkipsUnfinishedOneTimeSubgoals(t *testing.T) {
	ctx := context.Background()

	f := newFixture(testNow)
	f.addGoal("g1", "u1", "recurring", 1)
	f.addSubgoal("sg1", "g1", "u1", "one_time", 5, 3)

	summary, err := f.rollover.Run(ctx, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DeletedSubgoals)
	assert.True(t, f.subgoalRepo.subgoals["sg1"].IsActive)
}

func TestRolloverToleratesEntityFailures(t *testing.T) {
	ctx := context.Background()

	f := newFixture(testNow)
	f.addGoal("g1", "u1", "recurring", 2)
	f.addSubgoal("sg-bad", "g1", "u1", "recurring", 3, 1)
	f.addSubgoal("sg-ok", "g1", "u1", "recurring", 3, 1)
	f.subgoalLedger.seedErrs["sg-bad"] = errors.New("disk full")

	summary, err := f.rollover.Run(ctx, testNow)
	require.NoError(t, err)

	// The failing subgoal is skipped, the rest of the run proceeds.
	assert.Equal(t, 1, summary.ResetSubgoals)
	assert.Equal(t, 1, summary.GoalsSeeded)
}

func TestRolloverFailsWhenListingFails(t *testing.T) {
	ctx := context.Background()

	f := newFixture(testNow)
	f.subgoalRepo.listErr = errors.New("connection refused")

	_, err := f.rollover.Run(ctx, testNow)
	assert.Error(t, err)
}

func TestRolloverIsIdempotent(t *testing.T) {
	ctx := context.Background()
	next, err := period.Next(period.Current(testNow))
	require.NoError(t, err)

	f := newFixture(testNow)
	f.addGoal("g1", "u1", "recurring", 3)
	f.addSubgoal("sg-done", "g1", "u1", "one_time", 1, 1)
	f.addSubgoal("sg-habit", "g1", "u1", "recurring", 3, 2)

	first, err := f.rollover.Run(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, first.DeletedSubgoals)

	second, err := f.rollover.Run(ctx, testNow)
	require.NoError(t, err)

	// A repeated run finds no one-time subgoals left to delete, and
	// re-seeding never disturbs the rows the first run created.
	assert.Equal(t, 0, second.DeletedSubgoals)
	assert.Equal(t, 1, second.ResetSubgoals)

	count, _ := f.subgoalLedger.Count(ctx, "sg-habit", next)
	assert.Equal(t, 0, count)
}
