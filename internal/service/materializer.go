package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/week"
)

// instanceNamespace seeds deterministic instance ids. The same
// (templateID, weekID) pair always yields the same id, so repeated
// materialization is idempotent even without the existence check.
var instanceNamespace = uuid.MustParse("7b1f2a90-4c3d-4e8a-9f61-2d5c8e0a1b42")

// InstanceID derives the deterministic id for a template's instance in a
// given week.
func InstanceID(templateID, weekID string) string {
	return uuid.NewSHA1(instanceNamespace, []byte(templateID+"|"+weekID)).String()
}

// Materialize computes the goal instances missing from weekDoc for the
// given templates. Pure: the caller merges and persists the result.
//
// Drop rules, in order: templates whose dream no longer exists (orphans),
// inactive or completed templates, consistency templates with no weeks
// remaining, deadline templates past their deadline, and templates that
// already have an instance in weekDoc.
func Materialize(templates []*model.WeekTemplate, weekDoc *model.WeekDocument, existingDreamIDs map[string]bool) []model.GoalInstance {
	var out []model.GoalInstance

	for _, t := range templates {
		if !existingDreamIDs[t.DreamID] {
			continue
		}
		if !t.Active || t.Completed {
			continue
		}
		if t.Type == model.GoalTypeDeadline {
			if t.TargetDate != nil {
				until, err := week.WeeksUntil(*t.TargetDate, week.ID(weekDoc.WeekID))
				if err != nil || until < 0 {
					continue
				}
			}
		} else if t.WeeksRemaining <= 0 {
			continue
		}
		if weekDoc.HasInstanceForTemplate(t.ID) {
			continue
		}

		out = append(out, model.GoalInstance{
			ID:         InstanceID(t.ID, weekDoc.WeekID),
			TemplateID: t.ID,
			DreamID:    t.DreamID,
			WeekID:     weekDoc.WeekID,
			Type:       t.Type,
			Recurrence: t.Recurrence,
			Title:      t.Title,
			Frequency:  t.Frequency,
		})
	}

	return out
}

// NewWeekDocument builds an empty week document for the given ISO week.
func NewWeekDocument(userID string, weekID week.ID) (*model.WeekDocument, error) {
	start, end, err := week.Bounds(weekID)
	if err != nil {
		return nil, err
	}
	return &model.WeekDocument{
		UserID:    userID,
		WeekID:    string(weekID),
		WeekStart: start,
		WeekEnd:   end,
		Goals:     []model.GoalInstance{},
	}, nil
}

// goalPoints is the score contribution of one completed instance: weekly
// goals score 3, monthly and deadline goals score 5.
func goalPoints(g model.GoalInstance) int {
	if g.Type == model.GoalTypeDeadline || g.Recurrence == model.RecurrenceMonthly {
		return 5
	}
	return 3
}

// RecomputeStats refreshes the stats block from the document's instances.
func RecomputeStats(doc *model.WeekDocument) {
	stats := model.WeekStats{Total: len(doc.Goals)}
	for _, g := range doc.Goals {
		if g.Skipped {
			stats.Skipped++
			continue
		}
		if g.Completed {
			stats.Completed++
			stats.Score += goalPoints(g)
		}
	}
	doc.Stats = stats
}

// summarize freezes the outgoing week into an archive snapshot.
func summarize(doc *model.WeekDocument, now time.Time) *model.PastWeekArchive {
	RecomputeStats(doc)
	return &model.PastWeekArchive{
		UserID:         doc.UserID,
		WeekID:         doc.WeekID,
		WeekStart:      doc.WeekStart,
		WeekEnd:        doc.WeekEnd,
		TotalGoals:     doc.Stats.Total,
		CompletedGoals: doc.Stats.Completed,
		SkippedGoals:   doc.Stats.Skipped,
		Score:          doc.Stats.Score,
		ArchivedAt:     now,
	}
}
