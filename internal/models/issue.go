package models

import "time"

// IssueType is the category of a civic issue.
type IssueType string

const (
	IssueTypeInfrastructure IssueType = "infrastructure"
	IssueTypeSafety         IssueType = "safety"
	IssueTypeEnvironment    IssueType = "environment"
	IssueTypeNoise          IssueType = "noise"
)

// AllIssueTypes returns every issue type.
func AllIssueTypes() []IssueType {
	return []IssueType{IssueTypeInfrastructure, IssueTypeSafety, IssueTypeEnvironment, IssueTypeNoise}
}

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeInfrastructure, IssueTypeSafety, IssueTypeEnvironment, IssueTypeNoise:
		return true
	}
	return false
}

// Priority represents the urgency of an issue or alert.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AllPriorities returns every priority, most urgent first.
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueStatus is the badge status shown on issue cards and map markers.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusResolved   IssueStatus = "resolved"
)

// AllIssueStatuses returns every badge status.
func AllIssueStatuses() []IssueStatus {
	return []IssueStatus{IssueStatusPending, IssueStatusInProgress, IssueStatusResolved}
}

// Stages returns the lifecycle stages that display as this status.
func (s IssueStatus) Stages() []Stage {
	switch s {
	case IssueStatusPending:
		return []Stage{StageReported, StageAssigned}
	case IssueStatusInProgress:
		return []Stage{StageInProgress}
	case IssueStatusResolved:
		return []Stage{StageResolved}
	default:
		return nil
	}
}

// Label returns the status with dashes replaced by spaces.
func (s IssueStatus) Label() string {
	switch s {
	case IssueStatusInProgress:
		return "in progress"
	default:
		return string(s)
	}
}

// Issue is a civic issue reported by a resident.
type Issue struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        IssueType       `json:"type"`
	Priority    Priority        `json:"priority"`
	Stage       Stage           `json:"stage"` // declared current stage; not derived from Timeline
	Location    string          `json:"location"`
	MapX        float64         `json:"map_x"` // percent of map width
	MapY        float64         `json:"map_y"` // percent of map height
	HasPhoto    bool            `json:"has_photo"`
	HasAudio    bool            `json:"has_audio"`
	HasLocation bool            `json:"has_location"`
	Reporter    string          `json:"reporter"`
	Timeline    []TimelineEvent `json:"timeline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
}

// Status derives the badge status from the declared stage.
func (i *Issue) Status() IssueStatus {
	switch i.Stage {
	case StageInProgress:
		return IssueStatusInProgress
	case StageResolved:
		return IssueStatusResolved
	default:
		return IssueStatusPending
	}
}
