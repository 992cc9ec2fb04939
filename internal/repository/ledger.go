package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
)

// LedgerRepository is the durable per-(entity, period) counter store. The
// goal and subgoal ledgers share one implementation parameterized by table
// and foreign key column.
//
// IncrementBy is the only way a counter moves by a delta, and it is a single
// atomic arithmetic upsert so concurrent callers on the same row never lose
// updates. The result is clamped at zero.
type LedgerRepository interface {
	Count(ctx context.Context, entityID string, p period.Key) (int, error)
	CountsFor(ctx context.Context, entityIDs []string, p period.Key) (map[string]int, error)
	SeedZero(ctx context.Context, entityID string, p period.Key) error
	IncrementBy(ctx context.Context, entityID string, p period.Key, delta int) (int, error)
	SetCount(ctx context.Context, entityID string, p period.Key, count int) error
	Row(ctx context.Context, entityID string, p period.Key) (*model.ProgressRow, error)
	History(ctx context.Context, entityID string) ([]*model.ProgressRow, error)
}

type ledgerRepository struct {
	db       *sqlx.DB
	table    string
	fkColumn string
}

func NewGoalLedger(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db, table: "goal_progress", fkColumn: "goal_id"}
}

func NewSubgoalLedger(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db, table: "subgoal_progress", fkColumn: "subgoal_id"}
}

// Count returns the stored completed count, or 0 when no row exists.
// Absence means zero, not an error.
func (r *ledgerRepository) Count(ctx context.Context, entityID string, p period.Key) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT completed_count FROM %s WHERE %s = $1 AND period = $2`, r.table, r.fkColumn)

	err := r.db.GetContext(ctx, &count, query, entityID, p.String())
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}

	return count, nil
}

// CountsFor bulk-reads the counts for a set of entities in one period.
// Entities without a row are simply absent from the map.
func (r *ledgerRepository) CountsFor(ctx context.Context, entityIDs []string, p period.Key) (map[string]int, error) {
	counts := make(map[string]int, len(entityIDs))
	if len(entityIDs) == 0 {
		return counts, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s AS entity_id, completed_count FROM %s WHERE period = ? AND %s IN (?)`, r.fkColumn, r.table, r.fkColumn),
		p.String(), entityIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger counts query: %w", err)
	}

	rows := []struct {
		EntityID       string `db:"entity_id"`
		CompletedCount int    `db:"completed_count"`
	}{}

	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("ledger counts: %w", err)
	}

	for _, row := range rows {
		counts[row.EntityID] = row.CompletedCount
	}

	return counts, nil
}

// SeedZero ensures a zero-count row exists for the period. An existing row is
// left untouched whatever its count, so a retried rollover run can never
// destroy progress that was recorded in the meantime.
func (r *ledgerRepository) SeedZero(ctx context.Context, entityID string, p period.Key) error {
	now := time.Now()
	query := fmt.Sprintf(`INSERT INTO %s (id, %s, period, completed_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (%s, period) DO NOTHING`, r.table, r.fkColumn, r.fkColumn)

	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), entityID, p.String(), 0, now, now)
	if err != nil {
		return fmt.Errorf("ledger seed: %w", err)
	}

	return nil
}

// IncrementBy atomically adds delta to the row's count, creating the row when
// absent. The stored value floors at zero for both paths. Returns the count
// after the update.
func (r *ledgerRepository) IncrementBy(ctx context.Context, entityID string, p period.Key, delta int) (int, error) {
	insert := delta
	if insert < 0 {
		insert = 0
	}

	now := time.Now()
	query := fmt.Sprintf(`INSERT INTO %s (id, %s, period, completed_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (%s, period) DO UPDATE SET
	            completed_count = CASE WHEN %s.completed_count + $7 < 0 THEN 0 ELSE %s.completed_count + $7 END,
	            updated_at = $6
	          RETURNING completed_count`, r.table, r.fkColumn, r.fkColumn, r.table, r.table)

	var count int
	err := r.db.GetContext(ctx, &count, query, uuid.New().String(), entityID, p.String(), insert, now, now, delta)
	if err != nil {
		return 0, fmt.Errorf("ledger increment: %w", err)
	}

	return count, nil
}

// SetCount writes an absolute count, used by goal recalculation. It is a pure
// overwrite: recalculation derives the value solely from subgoal state, so
// last writer wins is correct here.
func (r *ledgerRepository) SetCount(ctx context.Context, entityID string, p period.Key, count int) error {
	now := time.Now()
	query := fmt.Sprintf(`INSERT INTO %s (id, %s, period, completed_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (%s, period) DO UPDATE SET
	            completed_count = $4,
	            updated_at = $6`, r.table, r.fkColumn, r.fkColumn)

	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), entityID, p.String(), count, now, now)
	if err != nil {
		return fmt.Errorf("ledger set count: %w", err)
	}

	return nil
}

func (r *ledgerRepository) Row(ctx context.Context, entityID string, p period.Key) (*model.ProgressRow, error) {
	row := &model.ProgressRow{}
	query := fmt.Sprintf(`SELECT id, %s AS entity_id, period, completed_count, created_at, updated_at
	          FROM %s WHERE %s = $1 AND period = $2`, r.fkColumn, r.table, r.fkColumn)

	err := r.db.GetContext(ctx, row, query, entityID, p.String())
	if err != nil {
		return nil, fmt.Errorf("ledger row: %w", err)
	}

	return row, nil
}

// History returns every ledger row for an entity ordered by period. Backs the
// period-over-period charts.
func (r *ledgerRepository) History(ctx context.Context, entityID string) ([]*model.ProgressRow, error) {
	var rows []*model.ProgressRow
	query := fmt.Sprintf(`SELECT id, %s AS entity_id, period, completed_count, created_at, updated_at
	          FROM %s WHERE %s = $1 ORDER BY period`, r.fkColumn, r.table, r.fkColumn)

	err := r.db.SelectContext(ctx, &rows, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("ledger history: %w", err)
	}

	return rows, nil
}
