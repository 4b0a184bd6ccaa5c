package service

import (
	"testing"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
)

const testUser = "user-1"

// Fixed reference weeks: 2026-W09 starts Monday 2026-02-23.
var (
	clockWeek1 = time.Date(2026, time.February, 25, 12, 0, 0, 0, time.UTC) // 2026-W09
	clockWeek2 = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)     // 2026-W10
)

type engine struct {
	store      *memStore
	dreams     repository.DreamRepository
	templates  repository.TemplateRepository
	weeks      repository.WeekRepository
	archives   repository.ArchiveRepository
	connects   repository.ConnectRepository
	emitter    *events.Emitter
	rollover   *RolloverService
	completion *CompletionService
	dreamSvc   *DreamService
}

func newTestEngine(t *testing.T, now time.Time) *engine {
	t.Helper()

	store := newMemStore()
	dreams := repository.NewDreamRepository(store)
	templates := repository.NewTemplateRepository(store)
	weeks := repository.NewWeekRepository(store)
	archives := repository.NewArchiveRepository(store)
	connects := repository.NewConnectRepository(store)
	emitter := events.NewEmitter()

	e := &engine{
		store:      store,
		dreams:     dreams,
		templates:  templates,
		weeks:      weeks,
		archives:   archives,
		connects:   connects,
		emitter:    emitter,
		rollover:   NewRolloverService(store, weeks, archives, templates, dreams, emitter),
		completion: NewCompletionService(store, weeks, dreams, templates, emitter),
		dreamSvc:   NewDreamService(store, dreams, templates, emitter),
	}
	e.setClock(now)
	return e
}

func (e *engine) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.rollover.now = clock
	e.completion.now = clock
	e.dreamSvc.now = clock
}

func consistencyGoal(title string, targetWeeks, frequency int) model.Goal {
	return model.Goal{
		Title:       title,
		Type:        model.GoalTypeConsistency,
		Recurrence:  model.RecurrenceWeekly,
		TargetWeeks: targetWeeks,
		Frequency:   frequency,
	}
}

func deadlineGoal(title string, target time.Time) model.Goal {
	return model.Goal{
		Title:      title,
		Type:       model.GoalTypeDeadline,
		TargetDate: &target,
	}
}
