package model

import (
	"time"
)

const (
	GoalTypeConsistency = "consistency"
	GoalTypeDeadline    = "deadline"

	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Dream is the top-level document a user tracks progress against.
// Goals are embedded, not separately referenced.
type Dream struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Progress  int       `json:"progress"` // 0-100
	Goals     []Goal    `json:"goals"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Goal is a durable, week-independent description of a recurring or
// deadline-bound goal, embedded in its dream.
// Once Completed or inactive, a goal is never instantiated again.
type Goal struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Type           string     `json:"type"` // consistency, deadline
	Recurrence     string     `json:"recurrence,omitempty"`
	TargetWeeks    int        `json:"targetWeeks,omitempty"`
	TargetMonths   int        `json:"targetMonths,omitempty"`
	TargetDate     *time.Time `json:"targetDate,omitempty"`
	WeeksRemaining int        `json:"weeksRemaining"`
	Active         bool       `json:"active"`
	Completed      bool       `json:"completed"`
	Frequency      int        `json:"frequency,omitempty"` // completions per week, 0 = simple toggle
	LastRolledWeek string     `json:"lastRolledWeek,omitempty"`
}

// Connect is a social connect event; each one contributes to the score.
type Connect struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
