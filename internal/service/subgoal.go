package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

type SubgoalService struct {
	repo          repository.SubgoalRepository
	goalRepo      repository.GoalRepository
	subgoalLedger repository.LedgerRepository
	agg           *AggregationService
	now           func() time.Time
}

func NewSubgoalService(
	repo repository.SubgoalRepository,
	goalRepo repository.GoalRepository,
	subgoalLedger repository.LedgerRepository,
	agg *AggregationService,
) *SubgoalService {
	return &SubgoalService{
		repo:          repo,
		goalRepo:      goalRepo,
		subgoalLedger: subgoalLedger,
		agg:           agg,
		now:           time.Now,
	}
}

// Create adds a subgoal under a goal the caller owns. The parent must exist
// and be active, which also enforces the same-owner invariant.
func (s *SubgoalService) Create(ctx context.Context, userID, goalID, title, goalType string, targetCount int) (*model.Subgoal, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !model.ValidGoalType(goalType) {
		return nil, ErrInvalidGoalType
	}
	if targetCount < 1 {
		return nil, ErrInvalidTarget
	}

	goal, err := s.goalRepo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	subgoal := &model.Subgoal{
		ID:          uuid.New().String(),
		GoalID:      goal.ID,
		UserID:      userID,
		Title:       title,
		Type:        goalType,
		TargetCount: targetCount,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(ctx, subgoal)
	if err != nil {
		return nil, err
	}

	err = s.subgoalLedger.SeedZero(ctx, subgoal.ID, period.Current(now))
	if err != nil {
		return nil, err
	}

	return subgoal, nil
}

// Subgoals returns the caller's active subgoals merged with their
// current-period progress.
func (s *SubgoalService) Subgoals(ctx context.Context, userID string) ([]*model.SubgoalStatus, error) {
	return s.agg.SubgoalStatuses(ctx, userID, period.Current(s.now()))
}

func (s *SubgoalService) Update(ctx context.Context, userID, subgoalID, title, goalType string, targetCount int) (*model.Subgoal, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !model.ValidGoalType(goalType) {
		return nil, ErrInvalidGoalType
	}
	if targetCount < 1 {
		return nil, ErrInvalidTarget
	}

	subgoal, err := s.repo.ByID(ctx, userID, subgoalID)
	if err != nil {
		return nil, err
	}

	subgoal.Title = title
	subgoal.Type = goalType
	subgoal.TargetCount = targetCount
	subgoal.UpdatedAt = s.now()

	err = s.repo.Update(ctx, subgoal)
	if err != nil {
		return nil, err
	}

	return subgoal, nil
}
