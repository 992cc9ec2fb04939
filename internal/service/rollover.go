package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

// RolloverSummary reports what one rollover run did.
type RolloverSummary struct {
	DeletedSubgoals int `json:"deletedSubgoals"`
	ResetSubgoals   int `json:"resetSubgoals"`
	GoalsSeeded     int `json:"goalsSeeded"`
	TotalProcessed  int `json:"totalProcessed"`
}

// RolloverService transitions all entities from the ending period into the
// next one: completed one-time subgoals are removed, recurring subgoals get a
// fresh zero row for the next period, and every active goal is seeded so the
// new period starts with explicit zero rows instead of ambiguous absences.
//
// The job holds no state of its own and every step is idempotent, so it is
// safe to trigger more often than strictly necessary and to re-run after a
// partial failure. Individual entity failures are logged and skipped; only a
// failure to list entities aborts the run.
type RolloverService struct {
	goalRepo      repository.GoalRepository
	subgoalRepo   repository.SubgoalRepository
	subgoalLedger repository.LedgerRepository
	agg           *AggregationService
	progress      *ProgressService
	goalLedger    repository.LedgerRepository
}

func NewRolloverService(
	goalRepo repository.GoalRepository,
	subgoalRepo repository.SubgoalRepository,
	goalLedger repository.LedgerRepository,
	subgoalLedger repository.LedgerRepository,
	agg *AggregationService,
	progress *ProgressService,
) *RolloverService {
	return &RolloverService{
		goalRepo:      goalRepo,
		subgoalRepo:   subgoalRepo,
		goalLedger:    goalLedger,
		subgoalLedger: subgoalLedger,
		agg:           agg,
		progress:      progress,
	}
}

// Run executes one rollover pass relative to the given instant.
func (s *RolloverService) Run(ctx context.Context, now time.Time) (*RolloverSummary, error) {
	current := period.Current(now)
	next, err := period.Next(current)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}

	slog.Info("rollover starting", "current_period", current, "next_period", next)

	subgoals, err := s.subgoalRepo.ActiveWithProgress(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("rollover: list subgoals: %w", err)
	}

	summary := &RolloverSummary{}

	for _, sg := range subgoals {
		switch sg.Type {
		case model.GoalTypeOneTime:
			if !IsComplete(sg.CompletedCount, sg.TargetCount) {
				// Unfinished one-time work carries over untouched.
				continue
			}

			err = s.progress.DeleteSubgoal(ctx, DeleteSubgoalArgs{UserID: sg.UserID, SubgoalID: sg.ID})
			if err != nil {
				slog.Error("rollover: failed to delete completed one-time subgoal", "error", err, "subgoal_id", sg.ID)
				continue
			}
			summary.DeletedSubgoals++

		case model.GoalTypeRecurring:
			err = s.subgoalLedger.SeedZero(ctx, sg.ID, next)
			if err != nil {
				slog.Error("rollover: failed to seed recurring subgoal", "error", err, "subgoal_id", sg.ID, "period", next)
				continue
			}
			summary.ResetSubgoals++

			err = s.agg.RecalculateGoal(ctx, sg.GoalID, next)
			if err != nil {
				slog.Error("rollover: failed to recalculate goal", "error", err, "goal_id", sg.GoalID, "period", next)
			}
		}
	}

	goalIDs, err := s.goalRepo.ActiveIDs(ctx)
	if err != nil {
		slog.Error("rollover: failed to list goals for seeding", "error", err)
	} else {
		for _, id := range goalIDs {
			err = s.goalLedger.SeedZero(ctx, id, next)
			if err != nil {
				slog.Error("rollover: failed to seed goal", "error", err, "goal_id", id, "period", next)
				continue
			}
			summary.GoalsSeeded++
		}
	}

	summary.TotalProcessed = summary.DeletedSubgoals + summary.ResetSubgoals

	slog.Info("rollover completed",
		"deleted_subgoals", summary.DeletedSubgoals,
		"reset_subgoals", summary.ResetSubgoals,
		"goals_seeded", summary.GoalsSeeded,
	)

	return summary, nil
}
