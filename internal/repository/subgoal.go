package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
)

var (
	ErrSubgoalNotFound = errors.New("subgoal not found")
)

type SubgoalRepository interface {
	Create(ctx context.Context, subgoal *model.Subgoal) error
	ByID(ctx context.Context, userID, subgoalID string) (*model.Subgoal, error)
	ActiveByUser(ctx context.Context, userID string) ([]*model.Subgoal, error)
	ActiveByGoal(ctx context.Context, goalID string) ([]*model.Subgoal, error)
	ActiveWithProgress(ctx context.Context, p period.Key) ([]*model.SubgoalWithCount, error)
	Update(ctx context.Context, subgoal *model.Subgoal) error
	Deactivate(ctx context.Context, userID, subgoalID string) error
	DeactivateByGoal(ctx context.Context, goalID string) error
}

type subgoalRepository struct {
	db *sqlx.DB
}

func NewSubgoalRepository(db *sqlx.DB) SubgoalRepository {
	return &subgoalRepository{db: db}
}

func (r *subgoalRepository) Create(ctx context.Context, subgoal *model.Subgoal) error {
	query := `INSERT INTO subgoals (id, goal_id, user_id, title, type, target_count, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		subgoal.ID,
		subgoal.GoalID,
		subgoal.UserID,
		subgoal.Title,
		subgoal.Type,
		subgoal.TargetCount,
		subgoal.IsActive,
		subgoal.CreatedAt,
		subgoal.UpdatedAt,
	)

	return err
}

func (r *subgoalRepository) ByID(ctx context.Context, userID, subgoalID string) (*model.Subgoal, error) {
	subgoal := &model.Subgoal{}
	query := `SELECT * FROM subgoals WHERE id = $1 AND user_id = $2 AND is_active = $3`

	err := r.db.GetContext(ctx, subgoal, query, subgoalID, userID, true)
	if err == sql.ErrNoRows {
		return nil, ErrSubgoalNotFound
	}

	return subgoal, err
}

func (r *subgoalRepository) ActiveByUser(ctx context.Context, userID string) ([]*model.Subgoal, error) {
	var subgoals []*model.Subgoal
	query := `SELECT * FROM subgoals WHERE user_id = $1 AND is_active = $2 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &subgoals, query, userID, true)
	if err != nil {
		return nil, err
	}

	return subgoals, nil
}

func (r *subgoalRepository) ActiveByGoal(ctx context.Context, goalID string) ([]*model.Subgoal, error) {
	var subgoals []*model.Subgoal
	query := `SELECT * FROM subgoals WHERE goal_id = $1 AND is_active = $2 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &subgoals, query, goalID, true)
	if err != nil {
		return nil, err
	}

	return subgoals, nil
}

// ActiveWithProgress returns all active subgoals that have a ledger row for
// the given period, joined with their completed count. Subgoals that never
// recorded progress in the period are not included, matching the rollover
// job's "only touch what was active this period" policy.
func (r *subgoalRepository) ActiveWithProgress(ctx context.Context, p period.Key) ([]*model.SubgoalWithCount, error) {
	var subgoals []*model.SubgoalWithCount
	query := `SELECT s.*, sp.completed_count
	          FROM subgoals s
	          JOIN subgoal_progress sp ON sp.subgoal_id = s.id AND sp.period = $1
	          WHERE s.is_active = $2
	          ORDER BY s.created_at`

	err := r.db.SelectContext(ctx, &subgoals, query, p.String(), true)
	if err != nil {
		return nil, err
	}

	return subgoals, nil
}

func (r *subgoalRepository) Update(ctx context.Context, subgoal *model.Subgoal) error {
	query := `UPDATE subgoals
	          SET title = $1, type = $2, target_count = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6 AND is_active = $7`

	result, err := r.db.ExecContext(ctx, query,
		subgoal.Title,
		subgoal.Type,
		subgoal.TargetCount,
		time.Now(),
		subgoal.ID,
		subgoal.UserID,
		true,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSubgoalNotFound
	}

	return nil
}

func (r *subgoalRepository) Deactivate(ctx context.Context, userID, subgoalID string) error {
	query := `UPDATE subgoals SET is_active = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 AND is_active = $5`

	result, err := r.db.ExecContext(ctx, query, false, time.Now(), subgoalID, userID, true)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSubgoalNotFound
	}

	return nil
}

// DeactivateByGoal soft-deletes every active subgoal under a goal. Used when
// the parent goal itself is deleted; affecting zero rows is not an error.
func (r *subgoalRepository) DeactivateByGoal(ctx context.Context, goalID string) error {
	query := `UPDATE subgoals SET is_active = $1, updated_at = $2 WHERE goal_id = $3 AND is_active = $4`

	_, err := r.db.ExecContext(ctx, query, false, time.Now(), goalID, true)
	return err
}
