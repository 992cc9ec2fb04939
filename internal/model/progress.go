package model

import (
	"time"
)

// ProgressRow is one ledger record: the completed count for a single
// (entity, period) pair. Goal and subgoal ledgers share the shape; the
// repository aliases its foreign key column to entity_id when scanning.
type ProgressRow struct {
	ID             string    `db:"id" json:"id"`
	EntityID       string    `db:"entity_id" json:"entityId"`
	Period         string    `db:"period" json:"period"`
	CompletedCount int       `db:"completed_count" json:"completedCount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// GoalStatus is the derived per-goal view for the current period. It is
// computed from the goal row plus its ledger count, never stored.
type GoalStatus struct {
	Goal
	Period               string  `json:"period"`
	CurrentProgress      int     `json:"currentProgress"`
	CompletionPercentage float64 `json:"completionPercentage"`
	Completed            bool    `json:"completed"`
}

// SubgoalStatus is the derived per-subgoal view for the current period.
type SubgoalStatus struct {
	Subgoal
	Period               string  `json:"period"`
	CurrentProgress      int     `json:"currentProgress"`
	CompletionPercentage float64 `json:"completionPercentage"`
	Completed            bool    `json:"completed"`
}
