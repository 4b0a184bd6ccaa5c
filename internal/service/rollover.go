package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/week"
)

// RolloverService moves a user from a stale week to the current one:
// archive the outgoing week, decrement durable counters, materialize the
// new week. The transition is idempotent under retry; the archive write
// happens before any counter mutation so an aborted rollover never loses
// a week's history.
type RolloverService struct {
	store     repository.DocumentStore
	weeks     repository.WeekRepository
	archives  repository.ArchiveRepository
	templates repository.TemplateRepository
	dreams    repository.DreamRepository
	emitter   *events.Emitter

	// locks serializes rollover attempts per user so a second trigger
	// firing mid-flight waits for the first instead of racing it.
	locks sync.Map // userID -> *sync.Mutex

	now func() time.Time
}

func NewRolloverService(
	store repository.DocumentStore,
	weeks repository.WeekRepository,
	archives repository.ArchiveRepository,
	templates repository.TemplateRepository,
	dreams repository.DreamRepository,
	emitter *events.Emitter,
) *RolloverService {
	return &RolloverService{
		store:     store,
		weeks:     weeks,
		archives:  archives,
		templates: templates,
		dreams:    dreams,
		emitter:   emitter,
		now:       time.Now,
	}
}

func (s *RolloverService) userLock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CheckAndRoll returns the user's week document for the current ISO week,
// rolling over first if the stored document is stale. Safe to call on
// every login; a no-op when the document is already current.
func (s *RolloverService) CheckAndRoll(ctx context.Context, userID string) (*model.WeekDocument, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	currentWeek := week.Current(now)

	cur, err := s.weeks.Current(ctx, userID)
	if err == repository.ErrWeekNotFound {
		// First login: materialize a fresh document, nothing to archive.
		return s.freshWeek(ctx, userID, currentWeek)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read week document: %w", err)
	}

	if cur.WeekID == string(currentWeek) {
		return cur, nil
	}

	return s.roll(ctx, userID, cur, currentWeek, now)
}

// SweepAll runs the rollover check for every known user. Rollover is
// normally triggered by the user's own requests; this is the operator
// hook for advancing users who have not logged in. Per-user failures are
// logged and skipped so one broken account cannot stall the sweep.
func (s *RolloverService) SweepAll(ctx context.Context) error {
	users, err := s.store.Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	for _, userID := range users {
		_, err := s.CheckAndRoll(ctx, userID)
		if err != nil {
			slog.Error("rollover sweep failed for user", "error", err, "user_id", userID)
		}
	}

	return nil
}

func (s *RolloverService) freshWeek(ctx context.Context, userID string, weekID week.ID) (*model.WeekDocument, error) {
	doc, err := NewWeekDocument(userID, weekID)
	if err != nil {
		return nil, err
	}

	templates, dreamIDs, err := s.loadTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc.Goals = Materialize(templates, doc, dreamIDs)
	RecomputeStats(doc)

	err = s.weeks.Upsert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to persist week document: %w", err)
	}

	slog.Info("materialized first week document", "user_id", userID, "week_id", doc.WeekID, "goals", len(doc.Goals))
	return doc, nil
}

func (s *RolloverService) roll(ctx context.Context, userID string, old *model.WeekDocument, newWeek week.ID, now time.Time) (*model.WeekDocument, error) {
	// Step 1: freeze the outgoing week. Write-once; a duplicate attempt
	// from an interrupted rollover is a no-op.
	archive := summarize(old, now)
	created, err := s.archives.Create(ctx, archive)
	if err != nil {
		// Abort before mutating any template so history is never lost.
		return nil, fmt.Errorf("failed to archive week %s: %w", old.WeekID, err)
	}
	if !created {
		slog.Info("archive already exists, retrying rollover tail", "user_id", userID, "week_id", old.WeekID)
	}

	templates, dreams, dreamIDs, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Step 2: decrement weeks remaining on consistency templates and
	// their embedded goals. LastRolledWeek stamps make this exactly-once
	// per transition even when a retry or a concurrent server-side
	// rollover replays the step.
	changedTemplates, changedDreams := decrementCounters(templates, dreams, string(newWeek))

	// Step 3: materialize the new week.
	doc, err := NewWeekDocument(userID, newWeek)
	if err != nil {
		return nil, err
	}
	doc.Goals = Materialize(templates, doc, dreamIDs)
	RecomputeStats(doc)

	// Steps 2+3 commit atomically: old week out, new week and mutated
	// counters in. A failure here leaves the stale document in place and
	// the next attempt retries behind the existing archive.
	upserts := make([]repository.Document, 0, len(changedTemplates)+len(changedDreams)+1)
	weekDoc, err := repository.WeekDoc(doc)
	if err != nil {
		return nil, err
	}
	upserts = append(upserts, weekDoc)
	for _, t := range changedTemplates {
		d, err := repository.TemplateDoc(t)
		if err != nil {
			return nil, err
		}
		upserts = append(upserts, d)
	}
	for _, dr := range changedDreams {
		d, err := repository.DreamDoc(dr)
		if err != nil {
			return nil, err
		}
		upserts = append(upserts, d)
	}

	err = s.store.Batch(ctx, userID, []string{repository.WeekKey(old.WeekID)}, upserts)
	if err != nil {
		return nil, fmt.Errorf("failed to commit rollover %s -> %s: %w", old.WeekID, newWeek, err)
	}

	slog.Info("week rolled over",
		"user_id", userID, "old_week", old.WeekID, "new_week", doc.WeekID,
		"archived_score", archive.Score, "new_goals", len(doc.Goals))

	s.emitter.EmitWeekRolledOver(events.WeekRolledOver{
		UserID:    userID,
		OldWeekID: old.WeekID,
		NewWeekID: doc.WeekID,
		Archive:   *archive,
	})

	return doc, nil
}

func (s *RolloverService) loadTemplates(ctx context.Context, userID string) ([]*model.WeekTemplate, map[string]bool, error) {
	templates, err := s.templates.Templates(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}
	dreams, err := s.dreams.Dreams(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dreams: %w", err)
	}
	dreamIDs := make(map[string]bool, len(dreams))
	for _, d := range dreams {
		dreamIDs[d.ID] = true
	}
	return templates, dreamIDs, nil
}

func (s *RolloverService) loadState(ctx context.Context, userID string) ([]*model.WeekTemplate, []*model.Dream, map[string]bool, error) {
	templates, err := s.templates.Templates(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}
	dreams, err := s.dreams.Dreams(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load dreams: %w", err)
	}
	dreamIDs := make(map[string]bool, len(dreams))
	for _, d := range dreams {
		dreamIDs[d.ID] = true
	}
	return templates, dreams, dreamIDs, nil
}

// decrementCounters applies the once-per-week decrement to active
// consistency templates and mirrors it onto the embedded dream goals.
// Reaching zero deactivates the goal but leaves Completed untouched:
// running out of weeks is not the same as success. Deadline goals are not
// decremented; they exit via user completion or a passed target date.
func decrementCounters(templates []*model.WeekTemplate, dreams []*model.Dream, newWeekID string) ([]*model.WeekTemplate, []*model.Dream) {
	var changedTemplates []*model.WeekTemplate
	for _, t := range templates {
		if !t.Active || t.Type != model.GoalTypeConsistency {
			continue
		}
		if t.LastRolledWeek == newWeekID {
			continue
		}
		t.WeeksRemaining--
		if t.WeeksRemaining <= 0 {
			t.WeeksRemaining = 0
			t.Active = false
		}
		t.LastRolledWeek = newWeekID
		changedTemplates = append(changedTemplates, t)
	}

	var changedDreams []*model.Dream
	for _, d := range dreams {
		changed := false
		for i := range d.Goals {
			g := &d.Goals[i]
			if !g.Active || g.Type != model.GoalTypeConsistency {
				continue
			}
			if g.LastRolledWeek == newWeekID {
				continue
			}
			g.WeeksRemaining--
			if g.WeeksRemaining <= 0 {
				g.WeeksRemaining = 0
				g.Active = false
			}
			g.LastRolledWeek = newWeekID
			changed = true
		}
		if changed {
			changedDreams = append(changedDreams, d)
		}
	}

	return changedTemplates, changedDreams
}
