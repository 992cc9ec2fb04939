package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/model"
	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
)

// In-memory fakes for the repository interfaces. They model just enough of
// the real store's behavior (owner scoping, soft delete, clamped arithmetic)
// for service orchestration tests.

type fakeLedger struct {
	counts    map[string]int
	seedErrs  map[string]error
	setCalls  int
	seedCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		counts:   make(map[string]int),
		seedErrs: make(map[string]error),
	}
}

func key(entityID string, p period.Key) string {
	return entityID + "|" + p.String()
}

func (l *fakeLedger) Count(_ context.Context, entityID string, p period.Key) (int, error) {
	return l.counts[key(entityID, p)], nil
}

func (l *fakeLedger) CountsFor(_ context.Context, entityIDs []string, p period.Key) (map[string]int, error) {
	counts := make(map[string]int)
	for _, id := range entityIDs {
		if c, ok := l.counts[key(id, p)]; ok {
			counts[id] = c
		}
	}
	return counts, nil
}

func (l *fakeLedger) SeedZero(_ context.Context, entityID string, p period.Key) error {
	l.seedCalls++
	if err := l.seedErrs[entityID]; err != nil {
		return err
	}
	k := key(entityID, p)
	if _, ok := l.counts[k]; !ok {
		l.counts[k] = 0
	}
	return nil
}

func (l *fakeLedger) IncrementBy(_ context.Context, entityID string, p period.Key, delta int) (int, error) {
	k := key(entityID, p)
	next := l.counts[k] + delta
	if next < 0 {
		next = 0
	}
	l.counts[k] = next
	return next, nil
}

func (l *fakeLedger) SetCount(_ context.Context, entityID string, p period.Key, count int) error {
	l.setCalls++
	l.counts[key(entityID, p)] = count
	return nil
}

func (l *fakeLedger) Row(_ context.Context, entityID string, p period.Key) (*model.ProgressRow, error) {
	k := key(entityID, p)
	count, ok := l.counts[k]
	if !ok {
		return nil, errors.New("row not found")
	}
	return &model.ProgressRow{EntityID: entityID, Period: p.String(), CompletedCount: count}, nil
}

func (l *fakeLedger) History(_ context.Context, entityID string) ([]*model.ProgressRow, error) {
	var rows []*model.ProgressRow
	for k, c := range l.counts {
		if len(k) > len(entityID) && k[:len(entityID)] == entityID {
			rows = append(rows, &model.ProgressRow{EntityID: entityID, Period: k[len(entityID)+1:], CompletedCount: c})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}

type fakeGoalRepo struct {
	goals   map[string]*model.Goal
	listErr error
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[string]*model.Goal)}
}

func (r *fakeGoalRepo) Create(_ context.Context, goal *model.Goal) error {
	r.goals[goal.ID] = goal
	return nil
}

func (r *fakeGoalRepo) ByID(_ context.Context, userID, goalID string) (*model.Goal, error) {
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID || !g.IsActive {
		return nil, repository.ErrGoalNotFound
	}
	return g, nil
}

func (r *fakeGoalRepo) ActiveByUser(_ context.Context, userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	for _, g := range r.goals {
		if g.UserID == userID && g.IsActive {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].CreatedAt.After(goals[j].CreatedAt) })
	return goals, nil
}

func (r *fakeGoalRepo) ActiveIDs(_ context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var ids []string
	for _, g := range r.goals {
		if g.IsActive {
			ids = append(ids, g.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeGoalRepo) Update(_ context.Context, goal *model.Goal) error {
	if _, ok := r.goals[goal.ID]; !ok {
		return repository.ErrGoalNotFound
	}
	r.goals[goal.ID] = goal
	return nil
}

func (r *fakeGoalRepo) Deactivate(_ context.Context, userID, goalID string) error {
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID || !g.IsActive {
		return repository.ErrGoalNotFound
	}
	g.IsActive = false
	return nil
}

type fakeSubgoalRepo struct {
	subgoals map[string]*model.Subgoal
	ledger   *fakeLedger
	listErr  error
}

func newFakeSubgoalRepo(ledger *fakeLedger) *fakeSubgoalRepo {
	return &fakeSubgoalRepo{subgoals: make(map[string]*model.Subgoal), ledger: ledger}
}

func (r *fakeSubgoalRepo) Create(_ context.Context, subgoal *model.Subgoal) error {
	r.subgoals[subgoal.ID] = subgoal
	return nil
}

func (r *fakeSubgoalRepo) ByID(_ context.Context, userID, subgoalID string) (*model.Subgoal, error) {
	sg, ok := r.subgoals[subgoalID]
	if !ok || sg.UserID != userID || !sg.IsActive {
		return nil, repository.ErrSubgoalNotFound
	}
	return sg, nil
}

func (r *fakeSubgoalRepo) ActiveByUser(_ context.Context, userID string) ([]*model.Subgoal, error) {
	var subgoals []*model.Subgoal
	for _, sg := range r.subgoals {
		if sg.UserID == userID && sg.IsActive {
			subgoals = append(subgoals, sg)
		}
	}
	sortSubgoals(subgoals)
	return subgoals, nil
}

func (r *fakeSubgoalRepo) ActiveByGoal(_ context.Context, goalID string) ([]*model.Subgoal, error) {
	var subgoals []*model.Subgoal
	for _, sg := range r.subgoals {
		if sg.GoalID == goalID && sg.IsActive {
			subgoals = append(subgoals, sg)
		}
	}
	sortSubgoals(subgoals)
	return subgoals, nil
}

func (r *fakeSubgoalRepo) ActiveWithProgress(_ context.Context, p period.Key) ([]*model.SubgoalWithCount, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.SubgoalWithCount
	for _, sg := range r.subgoals {
		if !sg.IsActive {
			continue
		}
		count, ok := r.ledger.counts[key(sg.ID, p)]
		if !ok {
			continue
		}
		out = append(out, &model.SubgoalWithCount{Subgoal: *sg, CompletedCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubgoalRepo) Update(_ context.Context, subgoal *model.Subgoal) error {
	if _, ok := r.subgoals[subgoal.ID]; !ok {
		return repository.ErrSubgoalNotFound
	}
	r.subgoals[subgoal.ID] = subgoal
	return nil
}

func (r *fakeSubgoalRepo) Deactivate(_ context.Context, userID, subgoalID string) error {
	sg, ok := r.subgoals[subgoalID]
	if !ok || sg.UserID != userID || !sg.IsActive {
		return repository.ErrSubgoalNotFound
	}
	sg.IsActive = false
	return nil
}

func (r *fakeSubgoalRepo) DeactivateByGoal(_ context.Context, goalID string) error {
	for _, sg := range r.subgoals {
		if sg.GoalID == goalID {
			sg.IsActive = false
		}
	}
	return nil
}

func sortSubgoals(subgoals []*model.Subgoal) {
	sort.Slice(subgoals, func(i, j int) bool { return subgoals[i].ID < subgoals[j].ID })
}

// fixture wires fakes into the full service graph with a pinned clock.
type fixture struct {
	goalRepo      *fakeGoalRepo
	subgoalRepo   *fakeSubgoalRepo
	goalLedger    *fakeLedger
	subgoalLedger *fakeLedger
	agg           *AggregationService
	progress      *ProgressService
	rollover      *RolloverService
	now           time.Time
}

func newFixture(now time.Time) *fixture {
	goalLedger := newFakeLedger()
	subgoalLedger := newFakeLedger()
	goalRepo := newFakeGoalRepo()
	subgoalRepo := newFakeSubgoalRepo(subgoalLedger)

	agg := NewAggregationService(goalRepo, subgoalRepo, goalLedger, subgoalLedger)
	progress := NewProgressService(goalRepo, subgoalRepo, goalLedger, subgoalLedger, agg)
	progress.now = func() time.Time { return now }
	rollover := NewRolloverService(goalRepo, subgoalRepo, goalLedger, subgoalLedger, agg, progress)

	return &fixture{
		goalRepo:      goalRepo,
		subgoalRepo:   subgoalRepo,
		goalLedger:    goalLedger,
		subgoalLedger: subgoalLedger,
		agg:           agg,
		progress:      progress,
		rollover:      rollover,
		now:           now,
	}
}

func (f *fixture) addGoal(id, userID string, goalType string, target int) *model.Goal {
	g := &model.Goal{
		ID:          id,
		UserID:      userID,
		Title:       "goal " + id,
		Type:        goalType,
		TargetCount: target,
		IsActive:    true,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.goalRepo.goals[id] = g
	return g
}

func (f *fixture) addSubgoal(id, goalID, userID, goalType string, target, count int) *model.Subgoal {
	sg := &model.Subgoal{
		ID:          id,
		GoalID:      goalID,
		UserID:      userID,
		Title:       "subgoal " + id,
		Type:        goalType,
		TargetCount: target,
		IsActive:    true,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.subgoalRepo.subgoals[id] = sg
	f.subgoalLedger.counts[key(id, period.Current(f.now))] = count
	return sg
}
