// Package stats summarizes community activity and scores reporters.
package stats

import (
	"fmt"
	"time"

	"github.com/joescharf/civic/internal/models"
)

// Summary counts issues by badge status, type and priority.
type Summary struct {
	Total          int                      `json:"total"`
	Pending        int                      `json:"pending"`
	InProgress     int                      `json:"in_progress"`
	Resolved       int                      `json:"resolved"`
	ResolutionRate int                      `json:"resolution_rate"` // percent, 0-100
	ByType         map[models.IssueType]int `json:"by_type"`
	ByPriority     map[models.Priority]int  `json:"by_priority"`
}

// Summarize counts issues. Every known type and priority appears in the maps,
// zero or not.
func Summarize(issues []*models.Issue) *Summary {
	s := &Summary{
		ByType:     make(map[models.IssueType]int),
		ByPriority: make(map[models.Priority]int),
	}
	for _, t := range models.AllIssueTypes() {
		s.ByType[t] = 0
	}
	for _, p := range models.AllPriorities() {
		s.ByPriority[p] = 0
	}

	for _, i := range issues {
		s.Total++
		switch i.Status() {
		case models.IssueStatusResolved:
			s.Resolved++
		case models.IssueStatusInProgress:
			s.InProgress++
		default:
			s.Pending++
		}
		s.ByType[i.Type]++
		s.ByPriority[i.Priority]++
	}
	if s.Total > 0 {
		s.ResolutionRate = s.Resolved * 100 / s.Total
	}
	return s
}

// Week holds the counts behind WeeklySummary.
type Week struct {
	Reported   int `json:"reported"`
	Resolved   int `json:"resolved"`
	InProgress int `json:"in_progress"`
}

// ThisWeek counts issues reported and resolved in the seven days before now,
// plus every issue currently in progress.
func ThisWeek(issues []*models.Issue, now time.Time) Week {
	since := now.Add(-7 * 24 * time.Hour)
	var w Week
	for _, i := range issues {
		if inWindow(i.CreatedAt, since, now) {
			w.Reported++
		}
		if i.Status() == models.IssueStatusResolved && i.ResolvedAt != nil && inWindow(*i.ResolvedAt, since, now) {
			w.Resolved++
		}
		if i.Status() == models.IssueStatusInProgress {
			w.InProgress++
		}
	}
	return w
}

// WeeklySummary renders the dashboard's weekly summary line.
func WeeklySummary(issues []*models.Issue, now time.Time) string {
	w := ThisWeek(issues, now)
	return fmt.Sprintf("This week: %d issues reported, %d resolved, %d in progress.", w.Reported, w.Resolved, w.InProgress)
}

func inWindow(t, since, now time.Time) bool {
	return !t.IsZero() && !t.Before(since) && !t.After(now)
}
