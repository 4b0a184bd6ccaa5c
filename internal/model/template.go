package model

import (
	"time"
)

// WeekTemplate mirrors a goal embedded in a dream for fast lookup across
// weeks. One-to-one with its originating goal (same ID); kept in sync via
// the atomic dual write in the completion tracker and dream service.
type WeekTemplate struct {
	ID             string     `json:"id"` // originating goal id
	UserID         string     `json:"userId"`
	DreamID        string     `json:"dreamId"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Recurrence     string     `json:"recurrence,omitempty"`
	Frequency      int        `json:"frequency,omitempty"`
	TargetWeeks    int        `json:"targetWeeks,omitempty"`
	TargetDate     *time.Time `json:"targetDate,omitempty"`
	WeeksRemaining int        `json:"weeksRemaining"`
	Active         bool       `json:"active"`
	Completed      bool       `json:"completed"`

	// LastRolledWeek is the week id of the last rollover that decremented
	// WeeksRemaining. It makes the decrement step retry-safe: a second
	// rollover attempt for the same week skips templates already stamped.
	LastRolledWeek string `json:"lastRolledWeek,omitempty"`
}

// TemplateFromGoal derives the mirrored template for an embedded goal.
func TemplateFromGoal(userID, dreamID string, g Goal) WeekTemplate {
	return WeekTemplate{
		ID:             g.ID,
		UserID:         userID,
		DreamID:        dreamID,
		Title:          g.Title,
		Type:           g.Type,
		Recurrence:     g.Recurrence,
		Frequency:      g.Frequency,
		TargetWeeks:    g.TargetWeeks,
		TargetDate:     g.TargetDate,
		WeeksRemaining: g.WeeksRemaining,
		Active:         g.Active,
		Completed:      g.Completed,
		LastRolledWeek: g.LastRolledWeek,
	}
}
