package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
)

var (
	ErrInstanceNotFound  = errors.New("goal instance not found")
	ErrFrequencyGoal     = errors.New("frequency goal: use increment or decrement")
	ErrSimpleGoal        = errors.New("simple goal: use toggle")
	ErrDeadlineCompleted = errors.New("deadline goal already completed")
	// ErrConflictingWrite means the goal and its mirrored template diverged
	// during dual-write reconciliation and one retry did not converge.
	// Surfaced loudly: silent inconsistency between the two documents is
	// the one state this engine must never tolerate.
	ErrConflictingWrite = errors.New("conflicting write: goal and template diverged")
)

// CompletionService applies user actions to the current week's goal
// instances. Every mutation works on a copy (optimistic apply) and only
// becomes the user's state when persistence succeeds; on failure the
// stored document is untouched and the caller gets a recoverable error.
type CompletionService struct {
	store     repository.DocumentStore
	weeks     repository.WeekRepository
	dreams    repository.DreamRepository
	templates repository.TemplateRepository
	emitter   *events.Emitter

	now func() time.Time
}

func NewCompletionService(
	store repository.DocumentStore,
	weeks repository.WeekRepository,
	dreams repository.DreamRepository,
	templates repository.TemplateRepository,
	emitter *events.Emitter,
) *CompletionService {
	return &CompletionService{
		store:     store,
		weeks:     weeks,
		dreams:    dreams,
		templates: templates,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Toggle flips completion on a simple (non-frequency) goal instance.
func (s *CompletionService) Toggle(ctx context.Context, userID, instanceID string) (*model.WeekDocument, error) {
	return s.mutate(ctx, userID, instanceID, func(inst *model.GoalInstance, now time.Time) error {
		if inst.Frequency > 0 {
			return ErrFrequencyGoal
		}
		if inst.Type == model.GoalTypeDeadline && inst.Completed {
			// Completed takes precedence once set; un-completing would
			// have to undo the dual write on the dream and template.
			return ErrDeadlineCompleted
		}
		inst.Completed = !inst.Completed
		if inst.Completed {
			inst.CompletedAt = &now
		} else {
			inst.CompletedAt = nil
		}
		return nil
	})
}

// Increment advances a frequency goal by one completion, clamped at the
// goal's frequency.
func (s *CompletionService) Increment(ctx context.Context, userID, instanceID string) (*model.WeekDocument, error) {
	return s.mutate(ctx, userID, instanceID, func(inst *model.GoalInstance, now time.Time) error {
		if inst.Frequency <= 0 {
			return ErrSimpleGoal
		}
		if inst.CompletionCount >= inst.Frequency {
			return nil
		}
		inst.CompletionCount++
		inst.CompletionDates = append(inst.CompletionDates, now)
		if inst.CompletionCount >= inst.Frequency && !inst.Completed {
			inst.Completed = true
			inst.CompletedAt = &now
		}
		return nil
	})
}

// Decrement rolls back one completion on a frequency goal, floored at 0.
func (s *CompletionService) Decrement(ctx context.Context, userID, instanceID string) (*model.WeekDocument, error) {
	return s.mutate(ctx, userID, instanceID, func(inst *model.GoalInstance, now time.Time) error {
		if inst.Frequency <= 0 {
			return ErrSimpleGoal
		}
		if inst.CompletionCount <= 0 {
			return nil
		}
		if inst.Type == model.GoalTypeDeadline && inst.Completed {
			return ErrDeadlineCompleted
		}
		inst.CompletionCount--
		if len(inst.CompletionDates) > 0 {
			inst.CompletionDates = inst.CompletionDates[:len(inst.CompletionDates)-1]
		}
		if inst.CompletionCount < inst.Frequency {
			inst.Completed = false
			inst.CompletedAt = nil
		}
		return nil
	})
}

// Skip hides the instance for the rest of the week. The template is
// untouched, so the goal reappears after the next rollover.
func (s *CompletionService) Skip(ctx context.Context, userID, instanceID string) (*model.WeekDocument, error) {
	return s.mutate(ctx, userID, instanceID, func(inst *model.GoalInstance, now time.Time) error {
		inst.Skipped = true
		return nil
	})
}

func (s *CompletionService) mutate(ctx context.Context, userID, instanceID string, apply func(*model.GoalInstance, time.Time) error) (*model.WeekDocument, error) {
	stored, err := s.weeks.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Optimistic apply on a working copy; the copy becomes the state of
	// record only when the persistence call succeeds.
	doc := cloneWeekDocument(stored)
	inst := doc.Instance(instanceID)
	if inst == nil {
		return nil, ErrInstanceNotFound
	}

	wasCompleted := inst.Completed
	now := s.now()
	err = apply(inst, now)
	if err != nil {
		return nil, err
	}
	RecomputeStats(doc)

	if inst.Type == model.GoalTypeDeadline && !wasCompleted && inst.Completed {
		err = s.completeDeadline(ctx, userID, doc, inst)
	} else {
		err = s.weeks.Upsert(ctx, doc)
	}
	if err != nil {
		// Rollback: discard the working copy, surface the failure as
		// recoverable so the user can retry the action.
		return nil, fmt.Errorf("failed to persist goal update: %w", err)
	}

	s.emitter.EmitGoalsChanged(events.GoalsChanged{UserID: userID})
	return doc, nil
}

// completeDeadline performs the atomic dual write: the week document, the
// originating goal inside its dream, and the mirrored week template all
// commit in a single transaction, then both sides are read back and
// verified. One quiet retry on mismatch, then a loud failure.
func (s *CompletionService) completeDeadline(ctx context.Context, userID string, doc *model.WeekDocument, inst *model.GoalInstance) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.writeDeadlineCompletion(ctx, userID, doc, inst)
		if err != nil {
			return err
		}

		ok, err := s.verifyDeadlineCompletion(ctx, userID, inst)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		slog.Warn("dual write reconciliation mismatch, retrying",
			"user_id", userID, "goal_id", inst.TemplateID, "attempt", attempt+1)
	}

	return fmt.Errorf("%w: goal %s", ErrConflictingWrite, inst.TemplateID)
}

func (s *CompletionService) writeDeadlineCompletion(ctx context.Context, userID string, doc *model.WeekDocument, inst *model.GoalInstance) error {
	upserts := make([]repository.Document, 0, 3)

	weekDoc, err := repository.WeekDoc(doc)
	if err != nil {
		return err
	}
	upserts = append(upserts, weekDoc)

	dream, err := s.dreams.ByID(ctx, userID, inst.DreamID)
	if err != nil && err != repository.ErrDreamNotFound {
		return err
	}
	if dream != nil {
		for i := range dream.Goals {
			if dream.Goals[i].ID == inst.TemplateID {
				dream.Goals[i].Completed = true
				dream.Goals[i].Active = false
				dream.Goals[i].WeeksRemaining = -1
			}
		}
		d, err := repository.DreamDoc(dream)
		if err != nil {
			return err
		}
		upserts = append(upserts, d)
	}

	tmpl, err := s.templates.ByID(ctx, userID, inst.TemplateID)
	if err != nil && err != repository.ErrTemplateNotFound {
		return err
	}
	if tmpl != nil {
		tmpl.Completed = true
		tmpl.Active = false
		tmpl.WeeksRemaining = -1
		d, err := repository.TemplateDoc(tmpl)
		if err != nil {
			return err
		}
		upserts = append(upserts, d)
	}

	return s.store.Batch(ctx, userID, nil, upserts)
}

func (s *CompletionService) verifyDeadlineCompletion(ctx context.Context, userID string, inst *model.GoalInstance) (bool, error) {
	dream, err := s.dreams.ByID(ctx, userID, inst.DreamID)
	if err != nil && err != repository.ErrDreamNotFound {
		return false, err
	}
	if dream != nil {
		for _, g := range dream.Goals {
			if g.ID == inst.TemplateID {
				if !g.Completed || g.Active || g.WeeksRemaining != -1 {
					return false, nil
				}
			}
		}
	}

	tmpl, err := s.templates.ByID(ctx, userID, inst.TemplateID)
	if err != nil && err != repository.ErrTemplateNotFound {
		return false, err
	}
	if tmpl != nil {
		if !tmpl.Completed || tmpl.Active || tmpl.WeeksRemaining != -1 {
			return false, nil
		}
	}

	return true, nil
}

func cloneWeekDocument(doc *model.WeekDocument) *model.WeekDocument {
	out := *doc
	out.Goals = make([]model.GoalInstance, len(doc.Goals))
	copy(out.Goals, doc.Goals)
	for i := range out.Goals {
		if n := len(out.Goals[i].CompletionDates); n > 0 {
			dates := make([]time.Time, n)
			copy(dates, out.Goals[i].CompletionDates)
			out.Goals[i].CompletionDates = dates
		}
	}
	return &out
}
