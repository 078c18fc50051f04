package lifecycle

import (
	"github.com/joescharf/civic/internal/models"
)

// StepState is how a single stepper entry should be drawn.
type StepState string

const (
	StepDone    StepState = "done"
	StepActive  StepState = "active" // current but not yet completed; drawn pulsing
	StepPending StepState = "pending"
)

// StepView is the derived render state for one lifecycle stage.
type StepView struct {
	Stage       models.Stage `json:"stage"`
	Label       string       `json:"label"`
	Icon        string       `json:"icon"`
	Completed   bool         `json:"completed"`
	Current     bool         `json:"current"`
	Timestamp   string       `json:"timestamp"`
	Description string       `json:"description"`
}

// State collapses the completed and current flags. Completion wins.
func (v StepView) State() StepState {
	switch {
	case v.Completed:
		return StepDone
	case v.Current:
		return StepActive
	default:
		return StepPending
	}
}

// Project derives one StepView per stage, in the fixed stage order.
//
// A stage is completed when log holds at least one event for it; only the first
// such event supplies the timestamp and description. A stage is current when it
// equals current, regardless of the log. A nil log projects every stage as
// not completed.
func Project(log EventFinder, current models.Stage) []StepView {
	stages := models.Stages()
	views := make([]StepView, 0, len(stages))
	for _, s := range stages {
		v := StepView{
			Stage:   s,
			Label:   s.Label(),
			Icon:    s.Icon(),
			Current: s == current,
		}
		if log != nil {
			if ev, ok := log.Find(s); ok {
				v.Completed = true
				v.Timestamp = ev.Timestamp
				v.Description = ev.Description
			}
		}
		views = append(views, v)
	}
	return views
}

// ProjectEvents is Project over a plain event slice.
func ProjectEvents(evs []models.TimelineEvent, current models.Stage) []StepView {
	return Project(events(evs), current)
}

// CurrentDetail returns the current step when it carries a description.
func CurrentDetail(views []StepView) (StepView, bool) {
	for _, v := range views {
		if v.Current && v.Description != "" {
			return v, true
		}
	}
	return StepView{}, false
}

// ConnectorFilled reports whether the connector drawn after step i is filled.
func ConnectorFilled(views []StepView, i int) bool {
	if i < 0 || i >= len(views)-1 {
		return false
	}
	return views[i].Completed
}

// Progress returns the percentage of stages completed.
func Progress(views []StepView) int {
	if len(views) == 0 {
		return 0
	}
	done := 0
	for _, v := range views {
		if v.Completed {
			done++
		}
	}
	return done * 100 / len(views)
}

// Next returns the stage that follows s, or false when s is the last stage
// or not a lifecycle stage at all.
func Next(s models.Stage) (models.Stage, bool) {
	idx := s.Index()
	stages := models.Stages()
	if idx < 0 || idx+1 >= len(stages) {
		return "", false
	}
	return stages[idx+1], true
}
