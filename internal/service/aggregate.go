package service

import (
	"context"
	"fmt"

	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

// Percentage converts a raw count and target into a completion percentage
// clamped to [0, 100]. Counts are stored raw, over-completion only disappears
// at display time.
func Percentage(count, target int) float64 {
	if target <= 0 {
		return 0
	}
	pct := 100 * float64(count) / float64(target)
	if pct > 100 {
		return 100
	}
	return pct
}

// IsComplete reports whether a count meets its target.
func IsComplete(count, target int) bool {
	return target > 0 && count >= target
}

// AggregationService derives the values the UI reads from raw ledger counts:
// per-entity status views and the goal counter that mirrors subgoal
// completion.
type AggregationService struct {
	goalRepo      repository.GoalRepository
	subgoalRepo   repository.SubgoalRepository
	goalLedger    repository.LedgerRepository
	subgoalLedger repository.LedgerRepository
}

func NewAggregationService(
	goalRepo repository.GoalRepository,
	subgoalRepo repository.SubgoalRepository,
	goalLedger repository.LedgerRepository,
	subgoalLedger repository.LedgerRepository,
) *AggregationService {
	return &AggregationService{
		goalRepo:      goalRepo,
		subgoalRepo:   subgoalRepo,
		goalLedger:    goalLedger,
		subgoalLedger: subgoalLedger,
	}
}

// RecalculateGoal rewrites a goal's counter for the period as the number of
// its active subgoals that meet their target. The result depends only on
// current subgoal state, never on the goal's prior counter, which makes the
// operation idempotent and safe to re-run after any partial failure.
func (s *AggregationService) RecalculateGoal(ctx context.Context, goalID string, p period.Key) error {
	subgoals, err := s.subgoalRepo.ActiveByGoal(ctx, goalID)
	if err != nil {
		return fmt.Errorf("recalculate goal %s: %w", goalID, err)
	}

	completed := 0
	if len(subgoals) > 0 {
		ids := make([]string, len(subgoals))
		for i, sg := range subgoals {
			ids[i] = sg.ID
		}

		counts, err := s.subgoalLedger.CountsFor(ctx, ids, p)
		if err != nil {
			return fmt.Errorf("recalculate goal %s: %w", goalID, err)
		}

		for _, sg := range subgoals {
			if IsComplete(counts[sg.ID], sg.TargetCount) {
				completed++
			}
		}
	}

	err = s.goalLedger.SetCount(ctx, goalID, p, completed)
	if err != nil {
		return fmt.Errorf("recalculate goal %s: %w", goalID, err)
	}

	return nil
}

// GoalStatuses materializes the per-goal view for one user and period:
// goal rows merged with their ledger counts. A goal without a ledger row
// reads as zero progress.
func (s *AggregationService) GoalStatuses(ctx context.Context, userID string, p period.Key) ([]*model.GoalStatus, error) {
	goals, err := s.goalRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("goal statuses: %w", err)
	}

	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}

	counts, err := s.goalLedger.CountsFor(ctx, ids, p)
	if err != nil {
		return nil, fmt.Errorf("goal statuses: %w", err)
	}

	statuses := make([]*model.GoalStatus, len(goals))
	for i, g := range goals {
		count := counts[g.ID]
		statuses[i] = &model.GoalStatus{
			Goal:                 *g,
			Period:               p.String(),
			CurrentProgress:      count,
			CompletionPercentage: Percentage(count, g.TargetCount),
			Completed:            IsComplete(count, g.TargetCount),
		}
	}

	return statuses, nil
}

// SubgoalStatuses materializes the per-subgoal view for one user and period.
func (s *AggregationService) SubgoalStatuses(ctx context.Context, userID string, p period.Key) ([]*model.SubgoalStatus, error) {
	subgoals, err := s.subgoalRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subgoal statuses: %w", err)
	}

	ids := make([]string, len(subgoals))
	for i, sg := range subgoals {
		ids[i] = sg.ID
	}

	counts, err := s.subgoalLedger.CountsFor(ctx, ids, p)
	if err != nil {
		return nil, fmt.Errorf("subgoal statuses: %w", err)
	}

	statuses := make([]*model.SubgoalStatus, len(subgoals))
	for i, sg := range subgoals {
		count := counts[sg.ID]
		statuses[i] = &model.SubgoalStatus{
			Subgoal:              *sg,
			Period:               p.String(),
			CurrentProgress:      count,
			CompletionPercentage: Percentage(count, sg.TargetCount),
			Completed:            IsComplete(count, sg.TargetCount),
		}
	}

	return statuses, nil
}
