package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/civic/internal/store"
)

// ErrAlreadySeeded is returned by Seed when the store already has issues and
// force is false.
var ErrAlreadySeeded = errors.New("store already has issues (use --force to replace them)")

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Issues int `json:"issues"`
	Events int `json:"events"`
	Alerts int `json:"alerts"`
}

// Seed writes the demo data to s. Stored records get fresh ids. With force,
// existing data is removed first.
func Seed(ctx context.Context, s store.Store, now time.Time, force bool) (*SeedResult, error) {
	existing, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return nil, fmt.Errorf("check existing issues: %w", err)
	}
	if len(existing) > 0 {
		if !force {
			return nil, ErrAlreadySeeded
		}
		if err := s.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset store: %w", err)
		}
	}

	d, err := Load(now)
	if err != nil {
		return nil, err
	}

	res := &SeedResult{}
	for _, issue := range d.Issues {
		issue.ID = ""
		for i := range issue.Timeline {
			issue.Timeline[i].ID = ""
			issue.Timeline[i].IssueID = ""
		}
		if err := s.CreateIssue(ctx, issue); err != nil {
			return nil, fmt.Errorf("seed issue %q: %w", issue.Title, err)
		}
		res.Issues++
		res.Events += len(issue.Timeline)
	}
	for _, alert := range d.Alerts {
		alert.ID = ""
		if err := s.CreateAlert(ctx, alert); err != nil {
			return nil, fmt.Errorf("seed alert %q: %w", alert.Title, err)
		}
		res.Alerts++
	}
	return res, nil
}
