// Package events is a typed in-process emitter for cross-component
// notifications. Dispatch is synchronous and fire-and-forget: listeners
// get no acknowledgment channel and must not block.
package events

import (
	"sync"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

// WeekRolledOver is published after a successful week transition.
type WeekRolledOver struct {
	UserID    string
	OldWeekID string
	NewWeekID string
	Archive   model.PastWeekArchive
}

// GoalsChanged carries no payload beyond the user; it is a cue for
// consumers to re-fetch the current week.
type GoalsChanged struct {
	UserID string
}

type Emitter struct {
	mu         sync.RWMutex
	rolledOver []func(WeekRolledOver)
	changed    []func(GoalsChanged)
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) SubscribeWeekRolledOver(fn func(WeekRolledOver)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolledOver = append(e.rolledOver, fn)
}

func (e *Emitter) SubscribeGoalsChanged(fn func(GoalsChanged)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changed = append(e.changed, fn)
}

func (e *Emitter) EmitWeekRolledOver(ev WeekRolledOver) {
	if e == nil {
		return
	}
	e.mu.RLock()
	listeners := e.rolledOver
	e.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (e *Emitter) EmitGoalsChanged(ev GoalsChanged) {
	if e == nil {
		return
	}
	e.mu.RLock()
	listeners := e.changed
	e.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
