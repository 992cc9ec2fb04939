package model

import (
	"time"
)

type Subgoal struct {
	ID          string    `db:"id" json:"id"`
	GoalID      string    `db:"goal_id" json:"goalId"`
	UserID      string    `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Type        string    `db:"type" json:"type"`
	TargetCount int       `db:"target_count" json:"targetCount"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// SubgoalWithCount is a subgoal joined with its ledger count for one period.
// The rollover job works on these so it never re-reads counts per entity.
type SubgoalWithCount struct {
	Subgoal
	CompletedCount int `db:"completed_count" json:"completedCount"`
}
