package model

import (
	"time"
)

// PastWeekArchive is an immutable snapshot of a finished week, created
// once at rollover and never mutated afterwards.
type PastWeekArchive struct {
	UserID         string    `json:"userId"`
	WeekID         string    `json:"weekId"`
	WeekStart      time.Time `json:"weekStartDate"`
	WeekEnd        time.Time `json:"weekEndDate"`
	TotalGoals     int       `json:"totalGoals"`
	CompletedGoals int       `json:"completedGoals"`
	SkippedGoals   int       `json:"skippedGoals"`
	Score          int       `json:"score"`
	ArchivedAt     time.Time `json:"archivedAt"`
}
