package model

import (
	"time"
)

// WeekDocument holds one user's goal instances for a single ISO week.
// At most one non-archived week document exists per user at any time.
type WeekDocument struct {
	UserID    string         `json:"userId"`
	WeekID    string         `json:"weekId"`
	WeekStart time.Time      `json:"weekStartDate"`
	WeekEnd   time.Time      `json:"weekEndDate"`
	Goals     []GoalInstance `json:"goals"`
	Stats     WeekStats      `json:"stats"`
}

// GoalInstance is a per-week materialization of a template, the unit the
// user actually checks off. At most one instance exists per
// (templateId, weekId) pair.
type GoalInstance struct {
	ID              string      `json:"id"`
	TemplateID      string      `json:"templateId"`
	DreamID         string      `json:"dreamId"`
	WeekID          string      `json:"weekId"`
	Type            string      `json:"type"`
	Recurrence      string      `json:"recurrence,omitempty"`
	Title           string      `json:"title"`
	Frequency       int         `json:"frequency,omitempty"`
	CompletionCount int         `json:"completionCount,omitempty"`
	CompletionDates []time.Time `json:"completionDates,omitempty"`
	Completed       bool        `json:"completed"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	Skipped         bool        `json:"skipped"`
}

type WeekStats struct {
	Total     int `json:"totalGoals"`
	Completed int `json:"completedGoals"`
	Skipped   int `json:"skippedGoals"`
	Score     int `json:"score"`
}

// Visible returns the instances the UI should show: skipped instances stay
// in the document (so skip survives reloads) but are filtered out here.
func (w *WeekDocument) Visible() []GoalInstance {
	out := make([]GoalInstance, 0, len(w.Goals))
	for _, g := range w.Goals {
		if !g.Skipped {
			out = append(out, g)
		}
	}
	return out
}

// Instance returns a pointer to the instance with the given id, or nil.
func (w *WeekDocument) Instance(id string) *GoalInstance {
	for i := range w.Goals {
		if w.Goals[i].ID == id {
			return &w.Goals[i]
		}
	}
	return nil
}

// HasInstanceForTemplate reports whether an instance for the template
// already exists in this document.
func (w *WeekDocument) HasInstanceForTemplate(templateID string) bool {
	for i := range w.Goals {
		if w.Goals[i].TemplateID == templateID {
			return true
		}
	}
	return false
}
