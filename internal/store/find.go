package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joescharf/civic/internal/models"
)

// ErrAmbiguousID is returned when an ID prefix matches more than one issue.
var ErrAmbiguousID = errors.New("ambiguous issue ID")

// FindIssue resolves an issue by full ID or unique prefix. IDs are ULIDs, so
// the prefix is matched case-insensitively.
func FindIssue(ctx context.Context, p Provider, id string) (*models.Issue, error) {
	if issue, err := p.GetIssue(ctx, id); err == nil {
		return issue, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	upper := strings.ToUpper(strings.TrimSpace(id))
	if upper == "" {
		return nil, fmt.Errorf("issue %q: %w", id, ErrNotFound)
	}
	issues, err := p.ListIssues(ctx, IssueListFilter{})
	if err != nil {
		return nil, err
	}

	var matches []*models.Issue
	for _, issue := range issues {
		if strings.HasPrefix(strings.ToUpper(issue.ID), upper) {
			matches = append(matches, issue)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("issue %s: %w", id, ErrNotFound)
	case 1:
		// List results carry no timeline.
		return p.GetIssue(ctx, matches[0].ID)
	default:
		return nil, fmt.Errorf("%w %s: matches %d issues", ErrAmbiguousID, id, len(matches))
	}
}
