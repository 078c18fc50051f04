package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/civic/internal/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestSummarize(t *testing.T) {
	issues := []*models.Issue{
		{Stage: models.StageReported, Type: models.IssueTypeInfrastructure, Priority: models.PriorityHigh},
		{Stage: models.StageAssigned, Type: models.IssueTypeSafety, Priority: models.PriorityMedium},
		{Stage: models.StageInProgress, Type: models.IssueTypeSafety, Priority: models.PriorityMedium},
		{Stage: models.StageResolved, Type: models.IssueTypeEnvironment, Priority: models.PriorityLow},
	}

	s := Summarize(issues)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.Resolved)
	assert.Equal(t, 25, s.ResolutionRate)
	assert.Equal(t, 2, s.ByType[models.IssueTypeSafety])
	assert.Equal(t, 0, s.ByType[models.IssueTypeNoise])
	assert.Contains(t, s.ByType, models.IssueTypeNoise)
	assert.Equal(t, 2, s.ByPriority[models.PriorityMedium])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.ResolutionRate)
	assert.Len(t, s.ByType, 4)
	assert.Len(t, s.ByPriority, 3)
}

func TestWeeklySummary(t *testing.T) {
	resolvedRecently := daysAgo(2)
	resolvedLongAgo := daysAgo(30)
	issues := []*models.Issue{
		{Stage: models.StageReported, CreatedAt: daysAgo(1)},
		{Stage: models.StageInProgress, CreatedAt: daysAgo(3)},
		{Stage: models.StageInProgress, CreatedAt: daysAgo(20)},
		{Stage: models.StageResolved, CreatedAt: daysAgo(10), ResolvedAt: &resolvedRecently},
		{Stage: models.StageResolved, CreatedAt: daysAgo(40), ResolvedAt: &resolvedLongAgo},
		{Stage: models.StageReported},
	}

	w := ThisWeek(issues, now)
	assert.Equal(t, Week{Reported: 2, Resolved: 1, InProgress: 2}, w)
	assert.Equal(t, "This week: 2 issues reported, 1 resolved, 2 in progress.", WeeklySummary(issues, now))
	assert.Equal(t, "This week: 0 issues reported, 0 resolved, 0 in progress.", WeeklySummary(nil, now))
}

func TestScore_Points(t *testing.T) {
	issues := []*models.Issue{
		{Stage: models.StageResolved, HasPhoto: true, CreatedAt: daysAgo(1)},
		{Stage: models.StageReported, CreatedAt: daysAgo(1)},
		{Stage: models.StageInProgress, HasPhoto: true, CreatedAt: daysAgo(2)},
	}

	r := NewScorer().Score(issues)
	assert.Equal(t, 3, r.Reports)
	assert.Equal(t, 1, r.Resolved)
	assert.Equal(t, 2, r.WithPhoto)
	assert.Equal(t, 2, r.ActiveDays)
	assert.Equal(t, 150, r.ReportPoints)
	assert.Equal(t, 25, r.ResolvedPoints)
	assert.Equal(t, 20, r.PhotoPoints)
	assert.Equal(t, 195, r.Points)

	earned := r.Earned()
	require.Len(t, earned, 1)
	assert.Equal(t, "First Reporter", earned[0].Title)
}

func TestScore_NoIssues(t *testing.T) {
	r := NewScorer().Score(nil)
	assert.Equal(t, 0, r.Points)
	assert.Len(t, r.Achievements, 4)
	assert.Empty(t, r.Earned())
}

func TestScore_AllAchievements(t *testing.T) {
	var issues []*models.Issue
	for d := 0; d < 15; d++ {
		issues = append(issues, &models.Issue{Stage: models.StageResolved, HasPhoto: true, CreatedAt: daysAgo(d)})
	}

	r := NewScorer().Score(issues)
	assert.Equal(t, 15*85, r.Points)
	assert.Len(t, r.Earned(), 3, "local hero needs the community")

	for _, i := range issues {
		i.Reporter = "you"
	}
	community := append(issues, &models.Issue{Reporter: "Priya", CreatedAt: daysAgo(0)})
	r = NewScorer().ScoreReporter("you", community, now)
	assert.Equal(t, 15*85, r.Points)
	assert.Len(t, r.Earned(), 4)
}

func TestScore_AchievementThresholds(t *testing.T) {
	tests := []struct {
		name   string
		issues []*models.Issue
		want   []string
	}{
		{
			name:   "four resolved is not a helper",
			issues: repeat(4, models.Issue{Stage: models.StageResolved, CreatedAt: daysAgo(0)}),
			want:   []string{"First Reporter"},
		},
		{
			name:   "five resolved is a helper",
			issues: repeat(5, models.Issue{Stage: models.StageResolved, CreatedAt: daysAgo(0)}),
			want:   []string{"First Reporter", "Community Helper"},
		},
		{
			name:   "twenty reports on one day are not a streak",
			issues: repeat(20, models.Issue{Stage: models.StageReported, CreatedAt: daysAgo(0)}),
			want:   []string{"First Reporter"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range NewScorer().Score(tt.issues).Earned() {
				got = append(got, a.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyLeaders(t *testing.T) {
	tests := []struct {
		name   string
		issues []*models.Issue
		want   []string
	}{
		{name: "no issues", want: nil},
		{
			name: "most reports this month wins",
			issues: []*models.Issue{
				{Reporter: "you", CreatedAt: daysAgo(1)},
				{Reporter: "you", CreatedAt: daysAgo(2)},
				{Reporter: "Priya", CreatedAt: daysAgo(3)},
			},
			want: []string{"you"},
		},
		{
			name: "last month does not count",
			issues: []*models.Issue{
				{Reporter: "you", CreatedAt: daysAgo(1)},
				{Reporter: "Priya", CreatedAt: daysAgo(20)},
				{Reporter: "Priya", CreatedAt: daysAgo(30)},
			},
			want: []string{"you"},
		},
		{
			name: "ties share the title",
			issues: []*models.Issue{
				{Reporter: "you", CreatedAt: daysAgo(1)},
				{Reporter: "Priya", CreatedAt: daysAgo(2)},
			},
			want: []string{"Priya", "you"},
		},
		{
			name:   "anonymous and undated reports are ignored",
			issues: []*models.Issue{{CreatedAt: daysAgo(1)}, {Reporter: "you"}},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthlyLeaders(tt.issues, now))
		})
	}
}

func TestScoreReporter_LocalHero(t *testing.T) {
	community := []*models.Issue{
		{Reporter: "you", CreatedAt: daysAgo(1)},
		{Reporter: "Priya", CreatedAt: daysAgo(1)},
		{Reporter: "Priya", CreatedAt: daysAgo(2)},
	}
	s := NewScorer()

	hero := func(r *ReporterScore) bool {
		for _, a := range r.Earned() {
			if a.Key == "local-hero" {
				return true
			}
		}
		return false
	}
	assert.True(t, hero(s.ScoreReporter("Priya", community, now)))
	assert.False(t, hero(s.ScoreReporter("you", community, now)))
	assert.False(t, hero(s.ScoreReporter("nobody", community, now)))
	assert.Equal(t, 100, s.ScoreReporter("Priya", community, now).ReportPoints)
}

func TestByReporter(t *testing.T) {
	groups := ByReporter([]*models.Issue{{Reporter: "you"}, {Reporter: "Priya"}, {Reporter: "you"}})
	assert.Len(t, groups["you"], 2)
	assert.Len(t, groups["Priya"], 1)
}

func repeat(n int, tmpl models.Issue) []*models.Issue {
	out := make([]*models.Issue, n)
	for i := range out {
		c := tmpl
		out[i] = &c
	}
	return out
}
