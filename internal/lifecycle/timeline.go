// Package lifecycle models the progress of an issue through its fixed stages.
//
// A [Timeline] is the append-only event log owned by one issue. [Project] turns a
// log plus the issue's declared current stage into one [StepView] per stage, which
// presentation code renders as a progress stepper. Nothing in this package fails:
// inconsistent input is projected as-is and can be inspected with [Check].
package lifecycle

import (
	"sync"

	"github.com/joescharf/civic/internal/models"
)

// EventFinder looks up the first event recorded for a stage.
type EventFinder interface {
	Find(stage models.Stage) (models.TimelineEvent, bool)
}

// Timeline is an ordered, append-only log of stage events.
// It is safe for concurrent use; appends are serialized per log.
type Timeline struct {
	mu     sync.RWMutex
	events []models.TimelineEvent
}

// NewTimeline returns a log holding events in the given order.
func NewTimeline(events ...models.TimelineEvent) *Timeline {
	t := &Timeline{}
	t.events = append(t.events, events...)
	return t
}

// Append adds ev to the end of the log. Stage order and uniqueness are not checked.
func (t *Timeline) Append(ev models.TimelineEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, ev)
}

// Find returns the first event in log order whose stage matches.
// A nil Timeline finds nothing.
func (t *Timeline) Find(stage models.Stage) (models.TimelineEvent, bool) {
	if t == nil {
		return models.TimelineEvent{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return findFirst(t.events, stage)
}

// All returns a copy of the events in log order.
func (t *Timeline) All() []models.TimelineEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.TimelineEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of events in the log.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// events is a read-only EventFinder over a plain slice.
type events []models.TimelineEvent

func (e events) Find(stage models.Stage) (models.TimelineEvent, bool) {
	return findFirst(e, stage)
}

func findFirst(evs []models.TimelineEvent, stage models.Stage) (models.TimelineEvent, bool) {
	for _, ev := range evs {
		if ev.Stage == stage {
			return ev, true
		}
	}
	return models.TimelineEvent{}, false
}
