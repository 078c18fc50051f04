package lifecycle

import (
	"fmt"

	"github.com/joescharf/civic/internal/models"
)

// WarningKind classifies an inconsistency between a log and its declared stage.
type WarningKind string

const (
	WarnCurrentBehind  WarningKind = "current_behind"
	WarnDuplicateStage WarningKind = "duplicate_stage"
	WarnOutOfOrder     WarningKind = "out_of_order"
	WarnUnknownStage   WarningKind = "unknown_stage"
)

// Warning flags input that projects oddly. It never blocks projection.
type Warning struct {
	Kind    WarningKind  `json:"kind"`
	Stage   models.Stage `json:"stage"`
	Message string       `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Check inspects a log and declared current stage for inconsistencies.
// An empty result means the input projects the way a reader would expect.
func Check(evs []models.TimelineEvent, current models.Stage) []Warning {
	var warnings []Warning

	seen := make(map[models.Stage]bool)
	highest := -1
	prev := -1
	for _, ev := range evs {
		idx := ev.Stage.Index()
		if idx < 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnUnknownStage,
				Stage:   ev.Stage,
				Message: fmt.Sprintf("event stage %q is not a lifecycle stage and is ignored", ev.Stage),
			})
			continue
		}
		if seen[ev.Stage] {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateStage,
				Stage:   ev.Stage,
				Message: fmt.Sprintf("stage %s appears more than once; only the first event is shown", ev.Stage.Label()),
			})
		}
		seen[ev.Stage] = true
		if idx < prev {
			warnings = append(warnings, Warning{
				Kind:    WarnOutOfOrder,
				Stage:   ev.Stage,
				Message: fmt.Sprintf("stage %s was recorded after a later stage", ev.Stage.Label()),
			})
		}
		prev = idx
		if idx > highest {
			highest = idx
		}
	}

	cur := current.Index()
	switch {
	case cur < 0:
		warnings = append(warnings, Warning{
			Kind:    WarnUnknownStage,
			Stage:   current,
			Message: fmt.Sprintf("current stage %q is not a lifecycle stage; no step is marked current", current),
		})
	case cur < highest:
		warnings = append(warnings, Warning{
			Kind:    WarnCurrentBehind,
			Stage:   current,
			Message: fmt.Sprintf("current stage %s is behind completed stage %s", current.Label(), models.Stages()[highest].Label()),
		})
	}

	return warnings
}
