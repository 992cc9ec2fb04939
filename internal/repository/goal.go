package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pietro-fantini/vibe-growth/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, userID, goalID string) (*model.Goal, error)
	ActiveByUser(ctx context.Context, userID string) ([]*model.Goal, error)
	ActiveIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, goal *model.Goal) error
	Deactivate(ctx context.Context, userID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, type, target_count, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Type,
		goal.TargetCount,
		goal.IsActive,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2 AND is_active = $3`

	err := r.db.GetContext(ctx, goal, query, goalID, userID, true)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) ActiveByUser(ctx context.Context, userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 AND is_active = $2 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &goals, query, userID, true)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// ActiveIDs returns every active goal across all users. Used by the rollover
// job to seed next-period rows.
func (r *goalRepository) ActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT id FROM goals WHERE is_active = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &ids, query, true)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, type = $2, target_count = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6 AND is_active = $7`

	result, err := r.db.ExecContext(ctx, query,
		goal.Title,
		goal.Type,
		goal.TargetCount,
		time.Now(),
		goal.ID,
		goal.UserID,
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
		return ErrGoalNotFound
	}

	return nil
}

// Deactivate soft-deletes a goal. Progress history for past periods is
// retained; the row is only excluded from active queries.
func (r *goalRepository) Deactivate(ctx context.Context, userID, goalID string) error {
	query := `UPDATE goals SET is_active = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 AND is_active = $5`

	result, err := r.db.ExecContext(ctx, query, false, time.Now(), goalID, userID, true)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
