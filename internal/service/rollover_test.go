package service

import (
	"context"
	"testing"

	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/week"
)

func mustCreateDream(t *testing.T, e *engine, goals ...model.Goal) *model.Dream {
	t.Helper()
	dream, err := e.dreamSvc.Create(context.Background(), testUser, "Get fit", "health", goals)
	if err != nil {
		t.Fatalf("failed to create dream: %v", err)
	}
	return dream
}

func mustRoll(t *testing.T, e *engine) *model.WeekDocument {
	t.Helper()
	doc, err := e.rollover.CheckAndRoll(context.Background(), testUser)
	if err != nil {
		t.Fatalf("CheckAndRoll failed: %v", err)
	}
	return doc
}

func TestFirstLoginMaterializesFreshWeek(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	mustCreateDream(t, e, consistencyGoal("Run", 4, 0))

	doc := mustRoll(t, e)

	if doc.WeekID != "2026-W09" {
		t.Errorf("expected week 2026-W09, got %s", doc.WeekID)
	}
	if len(doc.Goals) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(doc.Goals))
	}

	// No archive on first login: there is no outgoing week to freeze.
	archives, err := e.archives.Archives(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}
	if len(archives) != 0 {
		t.Errorf("expected no archives, got %d", len(archives))
	}
}

func TestCheckAndRollNoopWhenCurrent(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	mustCreateDream(t, e, consistencyGoal("Run", 4, 0))

	first := mustRoll(t, e)
	second := mustRoll(t, e)

	if second.WeekID != first.WeekID {
		t.Errorf("week changed without a boundary: %s -> %s", first.WeekID, second.WeekID)
	}
	if len(second.Goals) != len(first.Goals) {
		t.Errorf("instance count changed: %d -> %d", len(first.Goals), len(second.Goals))
	}
}

func TestRolloverArchivesAndDecrements(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	goalID := dream.Goals[0].ID

	week1Doc := mustRoll(t, e)

	// Complete the goal during week 1.
	_, err := e.completion.Toggle(context.Background(), testUser, week1Doc.Goals[0].ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	var rolled []events.WeekRolledOver
	e.emitter.SubscribeWeekRolledOver(func(ev events.WeekRolledOver) {
		rolled = append(rolled, ev)
	})

	e.setClock(clockWeek2)
	doc := mustRoll(t, e)

	if doc.WeekID != "2026-W10" {
		t.Fatalf("expected week 2026-W10, got %s", doc.WeekID)
	}
	if len(doc.Goals) != 1 {
		t.Fatalf("expected 1 instance in new week, got %d", len(doc.Goals))
	}
	if doc.Goals[0].Completed {
		t.Errorf("new instance should start incomplete")
	}

	tmpl, err := e.templates.ByID(context.Background(), testUser, goalID)
	if err != nil {
		t.Fatalf("failed to load template: %v", err)
	}
	if tmpl.WeeksRemaining != 3 {
		t.Errorf("expected weeksRemaining 3, got %d", tmpl.WeeksRemaining)
	}

	stored, err := e.dreams.ByID(context.Background(), testUser, dream.ID)
	if err != nil {
		t.Fatalf("failed to load dream: %v", err)
	}
	if stored.Goals[0].WeeksRemaining != 3 {
		t.Errorf("embedded goal not decremented: %d", stored.Goals[0].WeeksRemaining)
	}

	archives, err := e.archives.Archives(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}
	if len(archives) != 1 {
		t.Fatalf("expected 1 archive, got %d", len(archives))
	}
	a := archives[0]
	if a.WeekID != "2026-W09" || a.TotalGoals != 1 || a.CompletedGoals != 1 || a.Score != 3 {
		t.Errorf("archive wrong: %+v", a)
	}

	if len(rolled) != 1 {
		t.Fatalf("expected 1 WeekRolledOver event, got %d", len(rolled))
	}
	if rolled[0].OldWeekID != "2026-W09" || rolled[0].NewWeekID != "2026-W10" {
		t.Errorf("event ids wrong: %+v", rolled[0])
	}
}

func TestRolloverAbortsWhenArchiveFails(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	mustRoll(t, e)

	e.store.failOps["insert"] = true
	e.setClock(clockWeek2)

	_, err := e.rollover.CheckAndRoll(context.Background(), testUser)
	if err == nil {
		t.Fatal("expected rollover to fail when archive write fails")
	}

	// Archive-then-mutate ordering: no template was touched.
	tmpl, err := e.templates.ByID(context.Background(), testUser, dream.Goals[0].ID)
	if err != nil {
		t.Fatalf("failed to load template: %v", err)
	}
	if tmpl.WeeksRemaining != 4 {
		t.Errorf("template mutated despite archive failure: %d", tmpl.WeeksRemaining)
	}

	cur, err := e.weeks.Current(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to load week: %v", err)
	}
	if cur.WeekID != "2026-W09" {
		t.Errorf("week document replaced despite archive failure: %s", cur.WeekID)
	}
}

func TestRolloverRetryAfterPartialFailure(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	mustRoll(t, e)

	// First attempt: archive succeeds, commit fails.
	e.store.failOps["batch"] = true
	e.setClock(clockWeek2)
	_, err := e.rollover.CheckAndRoll(context.Background(), testUser)
	if err == nil {
		t.Fatal("expected commit failure")
	}

	archives, err := e.archives.Archives(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}
	if len(archives) != 1 {
		t.Fatalf("expected archive from first attempt, got %d", len(archives))
	}

	// Retry: the existing archive is a no-op, steps 4-5 run to completion.
	e.store.failOps["batch"] = false
	doc := mustRoll(t, e)

	if doc.WeekID != "2026-W10" {
		t.Errorf("retry did not complete rollover: %s", doc.WeekID)
	}

	archives, err = e.archives.Archives(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}
	if len(archives) != 1 {
		t.Errorf("duplicate archive created on retry: %d", len(archives))
	}

	tmpl, err := e.templates.ByID(context.Background(), testUser, dream.Goals[0].ID)
	if err != nil {
		t.Fatalf("failed to load template: %v", err)
	}
	if tmpl.WeeksRemaining != 3 {
		t.Errorf("expected single decrement after retry, got %d", tmpl.WeeksRemaining)
	}
}

func TestFourWeekGoalLifecycle(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	goalID := dream.Goals[0].ID
	ctx := context.Background()

	doc := mustRoll(t, e) // initial week, remaining 4
	if len(doc.Goals) != 1 {
		t.Fatalf("initial week should have the instance")
	}

	clock := clockWeek1
	wantRemaining := []int{3, 2, 1, 0, 0}
	wantInstance := []bool{true, true, true, false, false}

	for i := 0; i < 5; i++ {
		clock = clock.AddDate(0, 0, 7)
		e.setClock(clock)
		doc = mustRoll(t, e)

		tmpl, err := e.templates.ByID(ctx, testUser, goalID)
		if err != nil {
			t.Fatalf("rollover %d: failed to load template: %v", i+1, err)
		}
		if tmpl.WeeksRemaining != wantRemaining[i] {
			t.Errorf("rollover %d: weeksRemaining = %d, want %d", i+1, tmpl.WeeksRemaining, wantRemaining[i])
		}

		has := doc.HasInstanceForTemplate(goalID)
		if has != wantInstance[i] {
			t.Errorf("rollover %d: instance present = %v, want %v", i+1, has, wantInstance[i])
		}

		wantActive := wantRemaining[i] > 0
		if tmpl.Active != wantActive {
			t.Errorf("rollover %d: active = %v, want %v", i+1, tmpl.Active, wantActive)
		}
		if tmpl.Completed {
			t.Errorf("rollover %d: duration exhaustion must not mark the goal completed", i+1)
		}
	}
}

func TestSkippedGoalReturnsAfterRollover(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	goalID := dream.Goals[0].ID
	ctx := context.Background()

	doc := mustRoll(t, e)
	_, err := e.completion.Skip(ctx, testUser, doc.Goals[0].ID)
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}

	e.setClock(clockWeek2)
	doc = mustRoll(t, e)

	if !doc.HasInstanceForTemplate(goalID) {
		t.Error("skipped goal did not rematerialize from its untouched template")
	}
	if doc.Goals[0].Skipped {
		t.Error("new instance should not inherit the skip")
	}
}

func TestRolloverExcludesDeletedDream(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	dream := mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	ctx := context.Background()
	mustRoll(t, e)

	err := e.dreamSvc.Delete(ctx, testUser, dream.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	e.setClock(clockWeek2)
	doc := mustRoll(t, e)

	if len(doc.Goals) != 0 {
		t.Errorf("deleted dream's goals materialized: %+v", doc.Goals)
	}
}

func TestRolloverWeekBounds(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	mustCreateDream(t, e, consistencyGoal("Run", 4, 0))
	doc := mustRoll(t, e)

	start, end, err := week.Bounds(week.ID(doc.WeekID))
	if err != nil {
		t.Fatalf("bounds failed: %v", err)
	}
	if !doc.WeekStart.Equal(start) || !doc.WeekEnd.Equal(end) {
		t.Errorf("document bounds do not match calculator: %s %s", doc.WeekStart, doc.WeekEnd)
	}
}

func TestConcurrentRolloverSerialized(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	mustCreateDream(t, e, consistencyGoal("Run", 8, 0))
	mustRoll(t, e)
	e.setClock(clockWeek2)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := e.rollover.CheckAndRoll(context.Background(), testUser)
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent rollover failed: %v", err)
		}
	}

	archives, err := e.archives.Archives(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}
	if len(archives) != 1 {
		t.Errorf("double archive from concurrent rollovers: %d", len(archives))
	}

	tmpls, err := e.templates.Templates(context.Background(), testUser)
	if err != nil {
		t.Fatalf("failed to list templates: %v", err)
	}
	if tmpls[0].WeeksRemaining != 7 {
		t.Errorf("double decrement from concurrent rollovers: %d", tmpls[0].WeeksRemaining)
	}
}
