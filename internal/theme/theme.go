// Package theme maps issue, alert and stepper enums to display tones and icons.
//
// Every function switches over a closed enum; the default branch is the fallback
// for values outside it. Tests walk the All* lists to catch a new enum value
// that was never given a case.
package theme

import (
	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
)

// Tone is a semantic color shared by the terminal and JSON renderers.
type Tone string

const (
	ToneSuccess Tone = "success" // green
	ToneWarning Tone = "warning" // yellow
	ToneDanger  Tone = "danger"  // red
	ToneInfo    Tone = "info"    // blue
	ToneCaution Tone = "caution" // orange
	ToneMuted   Tone = "muted"   // gray
)

// StatusTone colors an issue status badge or map marker.
func StatusTone(s models.IssueStatus) Tone {
	switch s {
	case models.IssueStatusResolved:
		return ToneSuccess
	case models.IssueStatusInProgress:
		return ToneWarning
	case models.IssueStatusPending:
		return ToneDanger
	default:
		return ToneMuted
	}
}

// PriorityTone colors an issue priority label.
func PriorityTone(p models.Priority) Tone {
	switch p {
	case models.PriorityHigh:
		return ToneDanger
	case models.PriorityMedium:
		return ToneWarning
	case models.PriorityLow:
		return ToneSuccess
	default:
		return ToneMuted
	}
}

// TypeIcon returns the map marker icon for an issue type.
func TypeIcon(t models.IssueType) string {
	switch t {
	case models.IssueTypeInfrastructure:
		return "construction"
	case models.IssueTypeSafety:
		return "alert-triangle"
	case models.IssueTypeEnvironment:
		return "lightbulb"
	case models.IssueTypeNoise:
		return "volume"
	default:
		return "map-pin"
	}
}

// StatusIcon returns the icon shown beside a status in the detailed timeline.
func StatusIcon(s models.IssueStatus) string {
	switch s {
	case models.IssueStatusResolved:
		return "check-circle"
	case models.IssueStatusInProgress:
		return "clock"
	case models.IssueStatusPending:
		return "alert-triangle"
	default:
		return "clock"
	}
}

// AlertIcon returns the inbox icon for an alert type.
func AlertIcon(t models.AlertType) string {
	switch t {
	case models.AlertTypeChat:
		return "message-circle"
	case models.AlertTypeNotification:
		return "alert-circle"
	case models.AlertTypeAnnouncement:
		return "info"
	case models.AlertTypeAlert:
		return "alert-triangle"
	default:
		return "message-circle"
	}
}

// AlertTone colors the inbox icon for an alert type.
func AlertTone(t models.AlertType) Tone {
	switch t {
	case models.AlertTypeChat, models.AlertTypeAnnouncement:
		return ToneInfo
	case models.AlertTypeNotification:
		return ToneSuccess
	case models.AlertTypeAlert:
		return ToneDanger
	default:
		return ToneInfo
	}
}

// AlertPriorityTone colors an alert's priority badge. Alerts without a
// priority use the info tone.
func AlertPriorityTone(p models.Priority) Tone {
	switch p {
	case models.PriorityHigh:
		return ToneDanger
	case models.PriorityMedium:
		return ToneCaution
	case models.PriorityLow:
		return ToneSuccess
	default:
		return ToneInfo
	}
}

// StepTone colors one progress stepper circle.
func StepTone(v lifecycle.StepView) Tone {
	switch v.State() {
	case lifecycle.StepDone:
		if v.Stage == models.StageResolved {
			return ToneSuccess
		}
		return ToneInfo
	case lifecycle.StepActive:
		if v.Stage == models.StageInProgress {
			return ToneWarning
		}
		return ToneInfo
	default:
		return ToneMuted
	}
}

// ConnectorTone colors the line drawn after step i.
func ConnectorTone(views []lifecycle.StepView, i int) Tone {
	if lifecycle.ConnectorFilled(views, i) {
		return ToneInfo
	}
	return ToneMuted
}
