package stats

import (
	"sort"
	"time"

	"github.com/joescharf/civic/internal/models"
)

const (
	pointsPerReport   = 50
	pointsPerResolved = 25
	pointsPerPhoto    = 10
)

// Achievement is a profile badge.
type Achievement struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// ReporterScore is a reporter's points and achievements.
type ReporterScore struct {
	Reports        int           `json:"reports"`
	Resolved       int           `json:"resolved"`
	WithPhoto      int           `json:"with_photo"`
	ActiveDays     int           `json:"active_days"`
	ReportPoints   int           `json:"report_points"`
	ResolvedPoints int           `json:"resolved_points"`
	PhotoPoints    int           `json:"photo_points"`
	Points         int           `json:"points"`
	Achievements   []Achievement `json:"achievements"`
}

// Earned returns only the achievements that were earned.
func (r *ReporterScore) Earned() []Achievement {
	var out []Achievement
	for _, a := range r.Achievements {
		if a.Earned {
			out = append(out, a)
		}
	}
	return out
}

// Scorer computes reporter scores.
type Scorer struct{}

// NewScorer returns a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score scores one reporter's issues. Local Hero needs the rest of the
// community to compare against, so it is only awarded by ScoreReporter.
func (s *Scorer) Score(issues []*models.Issue) *ReporterScore {
	r := &ReporterScore{}
	days := make(map[string]struct{})

	for _, i := range issues {
		r.Reports++
		if i.Status() == models.IssueStatusResolved {
			r.Resolved++
		}
		if i.HasPhoto {
			r.WithPhoto++
		}
		if !i.CreatedAt.IsZero() {
			days[i.CreatedAt.Format("2006-01-02")] = struct{}{}
		}
	}
	r.ActiveDays = len(days)

	r.ReportPoints = r.Reports * pointsPerReport
	r.ResolvedPoints = r.Resolved * pointsPerResolved
	r.PhotoPoints = r.WithPhoto * pointsPerPhoto
	r.Points = r.ReportPoints + r.ResolvedPoints + r.PhotoPoints

	r.Achievements = []Achievement{
		{Key: "first-reporter", Title: "First Reporter", Description: "Reported your first issue", Earned: r.Reports >= 1},
		{Key: "community-helper", Title: "Community Helper", Description: "5 of your issues were resolved", Earned: r.Resolved >= 5},
		{Key: "streak-master", Title: "Streak Master", Description: "Reported issues on 7 different days", Earned: r.ActiveDays >= 7},
		{Key: "local-hero", Title: "Local Hero", Description: "Top contributor this month"},
	}
	return r
}

// ScoreReporter scores reporter against the whole community, awarding
// Local Hero when they share the most reports in now's calendar month.
func (s *Scorer) ScoreReporter(reporter string, community []*models.Issue, now time.Time) *ReporterScore {
	r := s.Score(ByReporter(community)[reporter])
	for _, leader := range MonthlyLeaders(community, now) {
		if leader == reporter {
			r.Achievements[len(r.Achievements)-1].Earned = true
			break
		}
	}
	return r
}

// MonthlyLeaders returns the reporters, sorted by name, tied for the most
// issues created in the calendar month containing now.
func MonthlyLeaders(issues []*models.Issue, now time.Time) []string {
	year, month, _ := now.Date()
	counts := make(map[string]int)
	best := 0
	for _, i := range issues {
		if i.Reporter == "" || i.CreatedAt.IsZero() {
			continue
		}
		y, m, _ := i.CreatedAt.In(now.Location()).Date()
		if y != year || m != month {
			continue
		}
		counts[i.Reporter]++
		if counts[i.Reporter] > best {
			best = counts[i.Reporter]
		}
	}

	var leaders []string
	for name, n := range counts {
		if n == best {
			leaders = append(leaders, name)
		}
	}
	sort.Strings(leaders)
	return leaders
}

// ByReporter groups issues by reporter name.
func ByReporter(issues []*models.Issue) map[string][]*models.Issue {
	out := make(map[string][]*models.Issue)
	for _, i := range issues {
		out[i.Reporter] = append(out[i.Reporter], i)
	}
	return out
}
