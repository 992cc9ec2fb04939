package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

var (
	ErrInvalidTarget   = errors.New("target count must be at least 1")
	ErrInvalidGoalType = errors.New("goal type must be one_time or recurring")
	ErrTitleRequired   = errors.New("title is required")
)

type GoalService struct {
	repo        repository.GoalRepository
	subgoalRepo repository.SubgoalRepository
	goalLedger  repository.LedgerRepository
	agg         *AggregationService
	now         func() time.Time
}

func NewGoalService(
	repo repository.GoalRepository,
	subgoalRepo repository.SubgoalRepository,
	goalLedger repository.LedgerRepository,
	agg *AggregationService,
) *GoalService {
	return &GoalService{
		repo:        repo,
		subgoalRepo: subgoalRepo,
		goalLedger:  goalLedger,
		agg:         agg,
		now:         time.Now,
	}
}

func (s *GoalService) Create(ctx context.Context, userID, title, goalType string, targetCount int) (*model.Goal, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !model.ValidGoalType(goalType) {
		return nil, ErrInvalidGoalType
	}
	if targetCount < 1 {
		return nil, ErrInvalidTarget
	}

	now := s.now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Type:        goalType,
		TargetCount: targetCount,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.Create(ctx, goal)
	if err != nil {
		return nil, err
	}

	// New goals start the period with an explicit zero row.
	err = s.goalLedger.SeedZero(ctx, goal.ID, period.Current(now))
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(ctx, userID, goalID)
}

// Goals returns the caller's active goals merged with their current-period
// progress, ordered by creation descending.
func (s *GoalService) Goals(ctx context.Context, userID string) ([]*model.GoalStatus, error) {
	return s.agg.GoalStatuses(ctx, userID, period.Current(s.now()))
}

func (s *GoalService) Update(ctx context.Context, userID, goalID, title, goalType string, targetCount int) (*model.Goal, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !model.ValidGoalType(goalType) {
		return nil, ErrInvalidGoalType
	}
	if targetCount < 1 {
		return nil, ErrInvalidTarget
	}

	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.Title = title
	goal.Type = goalType
	goal.TargetCount = targetCount
	goal.UpdatedAt = s.now()

	err = s.repo.Update(ctx, goal)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Delete soft-deletes a goal along with its subgoals. Ledger history for past
// periods stays in place.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return err
	}

	err = s.subgoalRepo.DeactivateByGoal(ctx, goal.ID)
	if err != nil {
		return err
	}

	return s.repo.Deactivate(ctx, userID, goal.ID)
}

// History returns a goal's ledger rows across all periods.
func (s *GoalService) History(ctx context.Context, userID, goalID string) ([]*model.ProgressRow, error) {
	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	return s.goalLedger.History(ctx, goal.ID)
}
