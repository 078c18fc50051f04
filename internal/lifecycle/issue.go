package lifecycle

import "github.com/joescharf/civic/internal/models"

// IssueProgress is the stepper projection for one issue.
type IssueProgress struct {
	IssueID  string             `json:"issue_id"`
	Title    string             `json:"title"`
	Stage    models.Stage       `json:"stage"`
	Status   models.IssueStatus `json:"status"`
	Steps    []StepView         `json:"steps"`
	Current  *StepView          `json:"current,omitempty"`
	Percent  int                `json:"percent"`
	Warnings []Warning          `json:"warnings,omitempty"`
}

// ForIssue projects an issue's timeline onto the stepper.
func ForIssue(issue *models.Issue) *IssueProgress {
	steps := ProjectEvents(issue.Timeline, issue.Stage)
	p := &IssueProgress{
		IssueID:  issue.ID,
		Title:    issue.Title,
		Stage:    issue.Stage,
		Status:   issue.Status(),
		Steps:    steps,
		Percent:  Progress(steps),
		Warnings: Check(issue.Timeline, issue.Stage),
	}
	if cur, ok := CurrentDetail(steps); ok {
		p.Current = &cur
	}
	return p
}
