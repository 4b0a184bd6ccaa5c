package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/validation"
	"github.com/dreamtrack/dreamtrack/internal/week"
)

// DreamService owns dream CRUD and keeps the mirrored week templates in
// lockstep: every dream write that touches goals also writes the derived
// templates in the same transaction, so a goal and its template can never
// diverge through this path.
type DreamService struct {
	store     repository.DocumentStore
	dreams    repository.DreamRepository
	templates repository.TemplateRepository
	emitter   *events.Emitter

	now func() time.Time
}

func NewDreamService(
	store repository.DocumentStore,
	dreams repository.DreamRepository,
	templates repository.TemplateRepository,
	emitter *events.Emitter,
) *DreamService {
	return &DreamService{
		store:     store,
		dreams:    dreams,
		templates: templates,
		emitter:   emitter,
		now:       time.Now,
	}
}

func (s *DreamService) ByID(ctx context.Context, userID, dreamID string) (*model.Dream, error) {
	return s.dreams.ByID(ctx, userID, dreamID)
}

func (s *DreamService) Dreams(ctx context.Context, userID string) ([]*model.Dream, error) {
	return s.dreams.Dreams(ctx, userID)
}

func (s *DreamService) Create(ctx context.Context, userID, title, category string, goals []model.Goal) (*model.Dream, error) {
	err := validation.ValidateDreamTitle(title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dream := &model.Dream{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Category:  category,
		Progress:  0,
		Goals:     make([]model.Goal, 0, len(goals)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, g := range goals {
		initialized, err := s.initGoal(g, now)
		if err != nil {
			return nil, err
		}
		dream.Goals = append(dream.Goals, initialized)
	}

	err = s.commit(ctx, dream, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dream: %w", err)
	}

	s.emitter.EmitGoalsChanged(events.GoalsChanged{UserID: userID})
	return dream, nil
}

// Update replaces the dream's title, category, progress, and goal list.
// Lifecycle fields (WeeksRemaining, Active, Completed, LastRolledWeek) of
// goals that already exist are preserved from the stored dream; a user
// edit must not reset a goal's remaining duration.
func (s *DreamService) Update(ctx context.Context, userID, dreamID, title, category string, progress int, goals []model.Goal) (*model.Dream, error) {
	err := validation.ValidateDreamTitle(title)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateProgress(progress)
	if err != nil {
		return nil, err
	}

	stored, err := s.dreams.ByID(ctx, userID, dreamID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]model.Goal, len(stored.Goals))
	for _, g := range stored.Goals {
		existing[g.ID] = g
	}

	now := s.now()
	updated := make([]model.Goal, 0, len(goals))
	removed := make(map[string]bool, len(stored.Goals))
	for id := range existing {
		removed[id] = true
	}

	for _, g := range goals {
		prev, ok := existing[g.ID]
		if ok {
			delete(removed, g.ID)
			g.WeeksRemaining = prev.WeeksRemaining
			g.Active = prev.Active
			g.Completed = prev.Completed
			g.LastRolledWeek = prev.LastRolledWeek
			err = validation.ValidateGoal(g.Title, g.Type, g.Recurrence, g.Frequency)
			if err != nil {
				return nil, err
			}
			updated = append(updated, g)
			continue
		}

		initialized, err := s.initGoal(g, now)
		if err != nil {
			return nil, err
		}
		updated = append(updated, initialized)
	}

	stored.Title = title
	stored.Category = category
	stored.Progress = progress
	stored.Goals = updated
	stored.UpdatedAt = now

	deleteKeys := make([]string, 0, len(removed))
	for id := range removed {
		deleteKeys = append(deleteKeys, repository.TemplateKey(id))
	}

	err = s.commit(ctx, stored, deleteKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to update dream: %w", err)
	}

	s.emitter.EmitGoalsChanged(events.GoalsChanged{UserID: userID})
	return stored, nil
}

func (s *DreamService) Delete(ctx context.Context, userID, dreamID string) error {
	stored, err := s.dreams.ByID(ctx, userID, dreamID)
	if err != nil {
		return err
	}

	deleteKeys := make([]string, 0, len(stored.Goals)+1)
	deleteKeys = append(deleteKeys, repository.DreamKey(dreamID))
	for _, g := range stored.Goals {
		deleteKeys = append(deleteKeys, repository.TemplateKey(g.ID))
	}

	// Orphaned instances in the current week document are tolerated; the
	// materializer's orphan rule keeps them from ever coming back.
	err = s.store.Batch(ctx, userID, deleteKeys, nil)
	if err != nil {
		return fmt.Errorf("failed to delete dream: %w", err)
	}

	s.emitter.EmitGoalsChanged(events.GoalsChanged{UserID: userID})
	return nil
}

// initGoal assigns an id and derives the initial lifecycle fields for a
// new goal template.
func (s *DreamService) initGoal(g model.Goal, now time.Time) (model.Goal, error) {
	err := validation.ValidateGoal(g.Title, g.Type, g.Recurrence, g.Frequency)
	if err != nil {
		return model.Goal{}, err
	}

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	g.Active = true
	g.Completed = false
	g.LastRolledWeek = ""

	switch {
	case g.Type == model.GoalTypeDeadline && g.TargetDate != nil:
		until, err := week.WeeksUntil(*g.TargetDate, week.Current(now))
		if err != nil {
			return model.Goal{}, err
		}
		g.WeeksRemaining = until
	case g.TargetWeeks > 0:
		g.WeeksRemaining = g.TargetWeeks
	case g.TargetMonths > 0:
		// Monthly goals track duration in weeks internally.
		g.WeeksRemaining = g.TargetMonths * 4
		g.TargetWeeks = g.WeeksRemaining
	default:
		return model.Goal{}, fmt.Errorf("%w: goal %q has no duration or deadline", validation.ErrInvalid, g.Title)
	}

	return g, nil
}

// commit writes the dream and its derived templates in one transaction.
func (s *DreamService) commit(ctx context.Context, dream *model.Dream, deleteKeys []string) error {
	upserts := make([]repository.Document, 0, len(dream.Goals)+1)

	doc, err := repository.DreamDoc(dream)
	if err != nil {
		return err
	}
	upserts = append(upserts, doc)

	for _, g := range dream.Goals {
		tmpl := model.TemplateFromGoal(dream.UserID, dream.ID, g)
		d, err := repository.TemplateDoc(&tmpl)
		if err != nil {
			return err
		}
		upserts = append(upserts, d)
	}

	return s.store.Batch(ctx, dream.UserID, deleteKeys, upserts)
}
