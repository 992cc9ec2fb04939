package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

var (
	ErrInvalidDelta = errors.New("progress delta must be a positive integer")
)

// IncrementGoalArgs moves a goal's own counter. Direct goal increments are
// intended for goals without subgoals; a goal with active subgoals is
// subgoal-driven and its counter is owned by recalculation instead. The two
// paths write the same ledger slot, so a caller should pick one model per
// goal and stick to it.
type IncrementGoalArgs struct {
	UserID string
	GoalID string
	By     int
}

type IncrementSubgoalArgs struct {
	UserID    string
	SubgoalID string
	By        int
}

type DecrementSubgoalArgs struct {
	UserID    string
	SubgoalID string
	By        int
}

type DeleteSubgoalArgs struct {
	UserID    string
	SubgoalID string
}

// ProgressService is the only sanctioned way to change a counter. Every
// mutation validates ownership first, then pairs the ledger write with
// whatever parent recalculation the write made necessary.
type ProgressService struct {
	goalRepo      repository.GoalRepository
	subgoalRepo   repository.SubgoalRepository
	goalLedger    repository.LedgerRepository
	subgoalLedger repository.LedgerRepository
	agg           *AggregationService
	now           func() time.Time
}

func NewProgressService(
	goalRepo repository.GoalRepository,
	subgoalRepo repository.SubgoalRepository,
	goalLedger repository.LedgerRepository,
	subgoalLedger repository.LedgerRepository,
	agg *AggregationService,
) *ProgressService {
	return &ProgressService{
		goalRepo:      goalRepo,
		subgoalRepo:   subgoalRepo,
		goalLedger:    goalLedger,
		subgoalLedger: subgoalLedger,
		agg:           agg,
		now:           time.Now,
	}
}

// IncrementGoal adds to a goal's current-period counter and returns the
// updated ledger row. No subgoal side effects.
func (s *ProgressService) IncrementGoal(ctx context.Context, args IncrementGoalArgs) (*model.ProgressRow, error) {
	if args.By <= 0 {
		return nil, ErrInvalidDelta
	}

	goal, err := s.goalRepo.ByID(ctx, args.UserID, args.GoalID)
	if err != nil {
		return nil, err
	}

	p := period.Current(s.now())
	_, err = s.goalLedger.IncrementBy(ctx, goal.ID, p, args.By)
	if err != nil {
		return nil, fmt.Errorf("increment goal %s: %w", goal.ID, err)
	}

	return s.goalLedger.Row(ctx, goal.ID, p)
}

// IncrementSubgoal adds to a subgoal's current-period counter. When the
// increment carries the subgoal across its completion threshold, the parent
// goal is recalculated from full subgoal state rather than blindly bumped,
// so concurrent subgoal updates cannot skew the parent.
func (s *ProgressService) IncrementSubgoal(ctx context.Context, args IncrementSubgoalArgs) error {
	if args.By <= 0 {
		return ErrInvalidDelta
	}

	subgoal, err := s.subgoalRepo.ByID(ctx, args.UserID, args.SubgoalID)
	if err != nil {
		return err
	}

	p := period.Current(s.now())
	before, err := s.subgoalLedger.Count(ctx, subgoal.ID, p)
	if err != nil {
		return fmt.Errorf("increment subgoal %s: %w", subgoal.ID, err)
	}

	after, err := s.subgoalLedger.IncrementBy(ctx, subgoal.ID, p, args.By)
	if err != nil {
		return fmt.Errorf("increment subgoal %s: %w", subgoal.ID, err)
	}

	if before < subgoal.TargetCount && after >= subgoal.TargetCount {
		err = s.agg.RecalculateGoal(ctx, subgoal.GoalID, p)
		if err != nil {
			return err
		}
	}

	return nil
}

// DecrementSubgoal subtracts from a subgoal's current-period counter,
// flooring at zero. Crossing back below the target triggers parent
// recalculation; decrementing an already-zero counter crosses nothing.
func (s *ProgressService) DecrementSubgoal(ctx context.Context, args DecrementSubgoalArgs) error {
	if args.By <= 0 {
		return ErrInvalidDelta
	}

	subgoal, err := s.subgoalRepo.ByID(ctx, args.UserID, args.SubgoalID)
	if err != nil {
		return err
	}

	p := period.Current(s.now())
	before, err := s.subgoalLedger.Count(ctx, subgoal.ID, p)
	if err != nil {
		return fmt.Errorf("decrement subgoal %s: %w", subgoal.ID, err)
	}

	after, err := s.subgoalLedger.IncrementBy(ctx, subgoal.ID, p, -args.By)
	if err != nil {
		return fmt.Errorf("decrement subgoal %s: %w", subgoal.ID, err)
	}

	if before >= subgoal.TargetCount && after < subgoal.TargetCount {
		err = s.agg.RecalculateGoal(ctx, subgoal.GoalID, p)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeleteSubgoal soft-deletes a subgoal and recalculates its parent so the
// aggregate no longer reflects the removed child. The pair is not atomic; a
// crash between the two steps is recovered by re-running the recalculation,
// which is idempotent.
func (s *ProgressService) DeleteSubgoal(ctx context.Context, args DeleteSubgoalArgs) error {
	subgoal, err := s.subgoalRepo.ByID(ctx, args.UserID, args.SubgoalID)
	if err != nil {
		return err
	}

	err = s.subgoalRepo.Deactivate(ctx, args.UserID, subgoal.ID)
	if err != nil {
		return err
	}

	return s.agg.RecalculateGoal(ctx, subgoal.GoalID, period.Current(s.now()))
}

// RecalculateGoal validates ownership and rebuilds the goal's current-period
// counter from its subgoals.
func (s *ProgressService) RecalculateGoal(ctx context.Context, userID, goalID string) error {
	goal, err := s.goalRepo.ByID(ctx, userID, goalID)
	if err != nil {
		return err
	}

	return s.agg.RecalculateGoal(ctx, goal.ID, period.Current(s.now()))
}

// InitializeMonthlyProgress seeds explicit zero rows for all of the caller's
// active goals and subgoals in the current period. Seeding never overwrites
// counts that already exist, so the call is safe to repeat.
func (s *ProgressService) InitializeMonthlyProgress(ctx context.Context, userID string) error {
	p := period.Current(s.now())

	goals, err := s.goalRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("initialize monthly progress: %w", err)
	}

	for _, g := range goals {
		err = s.goalLedger.SeedZero(ctx, g.ID, p)
		if err != nil {
			return fmt.Errorf("initialize monthly progress: %w", err)
		}
	}

	subgoals, err := s.subgoalRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("initialize monthly progress: %w", err)
	}

	for _, sg := range subgoals {
		err = s.subgoalLedger.SeedZero(ctx, sg.ID, p)
		if err != nil {
			return fmt.Errorf("initialize monthly progress: %w", err)
		}
	}

	slog.Debug("monthly progress initialized", "user_id", userID, "period", p, "goals", len(goals), "subgoals", len(subgoals))
	return nil
}

// CurrentPeriod exposes the period the mutator resolves internally, for the
// UI to label its views with.
func (s *ProgressService) CurrentPeriod() period.Key {
	return period.Current(s.now())
}
