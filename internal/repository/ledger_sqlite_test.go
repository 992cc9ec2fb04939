package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pietro-fantini/vibe-growth/internal/db"
	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
)

// These tests run against a real sqlite store so the ledger's arithmetic
// upsert is exercised on an actual driver, not just matched as SQL text.
func newSQLiteStore(t *testing.T) (GoalRepository, LedgerRepository) {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return NewGoalRepository(database), NewGoalLedger(database)
}

func createTestGoal(t *testing.T, repo GoalRepository, id string) {
	t.Helper()

	now := time.Now()
	err := repo.Create(context.Background(), &model.Goal{
		ID:          id,
		UserID:      "u1",
		Title:       "goal " + id,
		Type:        model.GoalTypeRecurring,
		TargetCount: 1,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
}

func TestLedgerConcurrentIncrements(t *testing.T) {
	goals, ledger := newSQLiteStore(t)
	ctx := context.Background()
	p := period.Key("2024-06")

	createTestGoal(t, goals, "g1")

	const callers = 25

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.IncrementBy(ctx, "g1", p, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Every caller's increment must land: the upsert does its arithmetic
	// inside the database, so no read-modify-write window exists to lose
	// an update in.
	count, err := ledger.Count(ctx, "g1", p)
	require.NoError(t, err)
	assert.Equal(t, callers, count)
}

func TestLedgerArithmeticOnSQLite(t *testing.T) {
	goals, ledger := newSQLiteStore(t)
	ctx := context.Background()
	p := period.Key("2024-06")

	t.Run("decrement floors at zero", func(t *testing.T) {
		createTestGoal(t, goals, "g-floor")

		count, err := ledger.IncrementBy(ctx, "g-floor", p, 4)
		require.NoError(t, err)
		require.Equal(t, 4, count)

		count, err = ledger.IncrementBy(ctx, "g-floor", p, -100)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("seed never overwrites a recorded count", func(t *testing.T) {
		createTestGoal(t, goals, "g-seed")

		_, err := ledger.IncrementBy(ctx, "g-seed", p, 4)
		require.NoError(t, err)

		require.NoError(t, ledger.SeedZero(ctx, "g-seed", p))

		count, err := ledger.Count(ctx, "g-seed", p)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("increment then decrement round-trips", func(t *testing.T) {
		createTestGoal(t, goals, "g-trip")

		_, err := ledger.IncrementBy(ctx, "g-trip", p, 3)
		require.NoError(t, err)

		_, err = ledger.IncrementBy(ctx, "g-trip", p, 1)
		require.NoError(t, err)
		count, err := ledger.IncrementBy(ctx, "g-trip", p, -1)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
