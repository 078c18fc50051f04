package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStage is returned by ParseStage for input outside the lifecycle.
var ErrInvalidStage = errors.New("invalid stage")

// Stage is one of the fixed lifecycle points an issue passes through.
type Stage string

const (
	StageReported   Stage = "reported"
	StageAssigned   Stage = "assigned"
	StageInProgress Stage = "in-progress"
	StageResolved   Stage = "resolved"
)

// Stages returns the lifecycle stages in their fixed order.
func Stages() []Stage {
	return []Stage{StageReported, StageAssigned, StageInProgress, StageResolved}
}

// Index returns the position of s in the lifecycle, or -1 if s is not a known stage.
func (s Stage) Index() int {
	switch s {
	case StageReported:
		return 0
	case StageAssigned:
		return 1
	case StageInProgress:
		return 2
	case StageResolved:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the four lifecycle stages.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Label returns the display label for the stage.
func (s Stage) Label() string {
	switch s {
	case StageReported:
		return "Reported"
	case StageAssigned:
		return "Assigned"
	case StageInProgress:
		return "In Progress"
	case StageResolved:
		return "Resolved"
	default:
		return string(s)
	}
}

// Icon returns the icon tag used when rendering the stage.
func (s Stage) Icon() string {
	switch s {
	case StageReported:
		return "alert-triangle"
	case StageAssigned:
		return "user"
	case StageInProgress:
		return "wrench"
	case StageResolved:
		return "check-circle"
	default:
		return "circle"
	}
}

// ParseStage converts user input to a Stage. It is case-insensitive and
// accepts underscore or unseparated spellings of in-progress.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reported":
		return StageReported, nil
	case "assigned":
		return StageAssigned, nil
	case "in-progress", "in_progress", "inprogress", "in progress":
		return StageInProgress, nil
	case "resolved":
		return StageResolved, nil
	default:
		return "", fmt.Errorf("%w: %q (use reported, assigned, in-progress, resolved)", ErrInvalidStage, s)
	}
}
