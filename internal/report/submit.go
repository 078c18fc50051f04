package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/joescharf/civic/internal/models"
)

// IssueCreator persists a new issue and its timeline.
type IssueCreator interface {
	CreateIssue(ctx context.Context, issue *models.Issue) error
}

// Build constructs a freshly reported issue from a validated form. Empty
// type and priority fall back to infrastructure and medium.
func Build(f Form, reporter, timestamp string) *models.Issue {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = TitleFromDescription(f.Description)
	}
	typ := models.IssueType(f.Type)
	if typ == "" {
		typ = models.IssueTypeInfrastructure
	}
	prio := models.Priority(f.Priority)
	if prio == "" {
		prio = models.PriorityMedium
	}
	if reporter == "" {
		reporter = "you"
	}

	return &models.Issue{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Type:        typ,
		Priority:    prio,
		Stage:       models.StageReported,
		Location:    strings.TrimSpace(f.Location),
		MapX:        f.MapX,
		MapY:        f.MapY,
		HasPhoto:    f.Photo,
		HasAudio:    f.Audio,
		HasLocation: f.GPS || strings.TrimSpace(f.Location) != "",
		Reporter:    reporter,
		Timeline: []models.TimelineEvent{{
			Stage:       models.StageReported,
			Timestamp:   timestamp,
			Description: "Issue reported by " + reporter,
		}},
	}
}

// Submit validates the form, fills in a missing type or priority with c,
// and persists the resulting issue. A nil classifier uses KeywordClassifier.
// Classifier errors fall back to the keyword heuristics.
func Submit(ctx context.Context, store IssueCreator, c Classifier, f Form, reporter, timestamp string) (*models.Issue, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	if f.Type == "" || f.Priority == "" {
		if c == nil {
			c = KeywordClassifier{}
		}
		cl, err := c.Classify(ctx, f.Description)
		if err != nil {
			cl, _ = KeywordClassifier{}.Classify(ctx, f.Description)
		}
		if f.Type == "" && cl.Type.Valid() {
			f.Type = string(cl.Type)
		}
		if f.Priority == "" && cl.Priority.Valid() {
			f.Priority = string(cl.Priority)
		}
	}

	issue := Build(f, reporter, timestamp)
	if err := store.CreateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return issue, nil
}
