package sample

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/store"
)

// Provider serves the demo data read-only from memory.
type Provider struct {
	data *Data
}

var _ store.Provider = (*Provider)(nil)

// NewProvider loads the embedded fixtures anchored at now.
func NewProvider(now time.Time) (*Provider, error) {
	d, err := Load(now)
	if err != nil {
		return nil, err
	}
	return &Provider{data: d}, nil
}

func copyIssue(i *models.Issue, withTimeline bool) *models.Issue {
	c := *i
	c.Timeline = nil
	if withTimeline {
		c.Timeline = append([]models.TimelineEvent(nil), i.Timeline...)
	}
	return &c
}

func matchIssue(f store.IssueListFilter, i *models.Issue) bool {
	if f.Status != "" && i.Status() != f.Status {
		return false
	}
	if f.Priority != "" && i.Priority != f.Priority {
		return false
	}
	if f.Type != "" && i.Type != f.Type {
		return false
	}
	if f.Reporter != "" && i.Reporter != f.Reporter {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(i.Title), q) ||
			strings.Contains(strings.ToLower(i.Description), q) ||
			strings.Contains(strings.ToLower(i.Location), q)
	}
	return true
}

// ListIssues returns matching issues newest first, without timelines.
func (p *Provider) ListIssues(_ context.Context, f store.IssueListFilter) ([]*models.Issue, error) {
	var out []*models.Issue
	for _, i := range p.data.Issues {
		if matchIssue(f, i) {
			out = append(out, copyIssue(i, false))
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (p *Provider) find(id string) (*models.Issue, error) {
	for _, i := range p.data.Issues {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, fmt.Errorf("issue %s: %w", id, store.ErrNotFound)
}

// GetIssue returns the issue with its timeline.
func (p *Provider) GetIssue(_ context.Context, id string) (*models.Issue, error) {
	i, err := p.find(id)
	if err != nil {
		return nil, err
	}
	return copyIssue(i, true), nil
}

// ListTimelineEvents returns the issue's events in fixture order.
func (p *Provider) ListTimelineEvents(_ context.Context, issueID string) ([]models.TimelineEvent, error) {
	i, err := p.find(issueID)
	if err != nil {
		return nil, err
	}
	return append([]models.TimelineEvent(nil), i.Timeline...), nil
}

// ListAlerts returns matching alerts newest first.
func (p *Provider) ListAlerts(_ context.Context, f store.AlertListFilter) ([]*models.Alert, error) {
	var out []*models.Alert
	for _, a := range p.data.Alerts {
		if f.UnreadOnly && !a.Unread {
			continue
		}
		if len(f.Types) > 0 && !containsType(f.Types, a.Type) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func containsType(types []models.AlertType, t models.AlertType) bool {
	for _, ty := range types {
		if ty == t {
			return true
		}
	}
	return false
}
