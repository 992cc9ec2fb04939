package model

import (
	"time"
)

const (
	GoalTypeOneTime   = "one_time"
	GoalTypeRecurring = "recurring"
)

// ValidGoalType reports whether s is one of the supported goal types.
func ValidGoalType(s string) bool {
	return s == GoalTypeOneTime || s == GoalTypeRecurring
}

type Goal struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Type        string    `db:"type" json:"type"`
	TargetCount int       `db:"target_count" json:"targetCount"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
