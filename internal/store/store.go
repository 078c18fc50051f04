package store

import (
	"context"
	"errors"

	"github.com/joescharf/civic/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// IssueListFilter specifies filters for listing issues.
type IssueListFilter struct {
	Status   models.IssueStatus
	Priority models.Priority
	Type     models.IssueType
	Reporter string
	Query    string // case-insensitive match on title, description or location
}

// AlertListFilter specifies filters for listing alerts.
type AlertListFilter struct {
	Types      []models.AlertType // empty means every type
	UnreadOnly bool
}

// Provider is the read side used by screens, the API and the MCP tools.
// ListIssues does not populate Issue.Timeline; GetIssue does.
type Provider interface {
	ListIssues(ctx context.Context, filter IssueListFilter) ([]*models.Issue, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	ListTimelineEvents(ctx context.Context, issueID string) ([]models.TimelineEvent, error)
	ListAlerts(ctx context.Context, filter AlertListFilter) ([]*models.Alert, error)
}

// Store defines the persistence interface for civic.
type Store interface {
	Provider

	// Issues
	CreateIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	DeleteIssue(ctx context.Context, id string) error

	// AppendTimelineEvent adds ev after the issue's existing events. With
	// setCurrent the issue's declared stage becomes ev.Stage.
	AppendTimelineEvent(ctx context.Context, issueID string, ev *models.TimelineEvent, setCurrent bool) error
	// AdvanceIssue records the stage after the declared one and makes it
	// current, atomically. It returns ErrNoNextStage when none exists.
	AdvanceIssue(ctx context.Context, issueID, description, timestamp string) (*models.TimelineEvent, error)

	// Alerts
	CreateAlert(ctx context.Context, alert *models.Alert) error
	MarkAlertRead(ctx context.Context, id string) error

	// Lifecycle
	Reset(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
