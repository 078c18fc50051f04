// Package sample provides embedded demo data, an in-memory Provider over it,
// and a seeder that writes it to a Store.
package sample

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/civic/internal/models"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtureEvent struct {
	Stage       string `yaml:"stage"`
	Timestamp   string `yaml:"timestamp"`
	Description string `yaml:"description"`
}

type fixtureIssue struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	Priority    string         `yaml:"priority"`
	Stage       string         `yaml:"stage"`
	Location    string         `yaml:"location"`
	MapX        float64        `yaml:"map_x"`
	MapY        float64        `yaml:"map_y"`
	Reporter    string         `yaml:"reporter"`
	HasPhoto    bool           `yaml:"has_photo"`
	HasAudio    bool           `yaml:"has_audio"`
	Age         string         `yaml:"age"`
	Timeline    []fixtureEvent `yaml:"timeline"`
}

type fixtureAlert struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"`
	Sender       string `yaml:"sender"`
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
	Timestamp    string `yaml:"timestamp"`
	Unread       bool   `yaml:"unread"`
	Priority     string `yaml:"priority"`
	Location     string `yaml:"location"`
	IssueRef     string `yaml:"issue_ref"`
	Participants int    `yaml:"participants"`
	Avatar       string `yaml:"avatar"`
	Age          string `yaml:"age"`
}

type fixtures struct {
	Issues []fixtureIssue `yaml:"issues"`
	Alerts []fixtureAlert `yaml:"alerts"`
}

// Data is the parsed demo data with creation times anchored to a moment.
type Data struct {
	Issues []*models.Issue
	Alerts []*models.Alert
}

// Load parses the embedded fixtures, dating each record relative to now.
func Load(now time.Time) (*Data, error) {
	return parse(fixturesYAML, now)
}

func parse(raw []byte, now time.Time) (*Data, error) {
	var f fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	d := &Data{}
	for _, fi := range f.Issues {
		issue, err := fi.toIssue(now)
		if err != nil {
			return nil, err
		}
		d.Issues = append(d.Issues, issue)
	}
	for _, fa := range f.Alerts {
		alert, err := fa.toAlert(now)
		if err != nil {
			return nil, err
		}
		d.Alerts = append(d.Alerts, alert)
	}
	return d, nil
}

func createdAt(now time.Time, age string) (time.Time, error) {
	if age == "" {
		return now, nil
	}
	d, err := time.ParseDuration(age)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}

func (fi fixtureIssue) toIssue(now time.Time) (*models.Issue, error) {
	stage, err := models.ParseStage(fi.Stage)
	if err != nil {
		return nil, fmt.Errorf("issue %q: %w", fi.Title, err)
	}
	if !models.IssueType(fi.Type).Valid() {
		return nil, fmt.Errorf("issue %q: unknown type %q", fi.Title, fi.Type)
	}
	if !models.Priority(fi.Priority).Valid() {
		return nil, fmt.Errorf("issue %q: unknown priority %q", fi.Title, fi.Priority)
	}
	created, err := createdAt(now, fi.Age)
	if err != nil {
		return nil, fmt.Errorf("issue %q age: %w", fi.Title, err)
	}

	issue := &models.Issue{
		ID:          fi.ID,
		Title:       fi.Title,
		Description: fi.Description,
		Type:        models.IssueType(fi.Type),
		Priority:    models.Priority(fi.Priority),
		Stage:       stage,
		Location:    fi.Location,
		MapX:        fi.MapX,
		MapY:        fi.MapY,
		HasPhoto:    fi.HasPhoto,
		HasAudio:    fi.HasAudio,
		HasLocation: fi.Location != "",
		Reporter:    fi.Reporter,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if stage == models.StageResolved {
		resolved := now.Add(-time.Hour)
		issue.ResolvedAt = &resolved
	}

	for i, fe := range fi.Timeline {
		st, err := models.ParseStage(fe.Stage)
		if err != nil {
			return nil, fmt.Errorf("issue %q event %d: %w", fi.Title, i, err)
		}
		issue.Timeline = append(issue.Timeline, models.TimelineEvent{
			IssueID:     fi.ID,
			Seq:         i + 1,
			Stage:       st,
			Timestamp:   fe.Timestamp,
			Description: fe.Description,
			CreatedAt:   created,
		})
	}
	return issue, nil
}

func (fa fixtureAlert) toAlert(now time.Time) (*models.Alert, error) {
	if !models.AlertType(fa.Type).Valid() {
		return nil, fmt.Errorf("alert %q: unknown type %q", fa.Title, fa.Type)
	}
	if fa.Priority != "" && !models.Priority(fa.Priority).Valid() {
		return nil, fmt.Errorf("alert %q: unknown priority %q", fa.Title, fa.Priority)
	}
	created, err := createdAt(now, fa.Age)
	if err != nil {
		return nil, fmt.Errorf("alert %q age: %w", fa.Title, err)
	}
	return &models.Alert{
		ID:           fa.ID,
		Type:         models.AlertType(fa.Type),
		Sender:       fa.Sender,
		Title:        fa.Title,
		Content:      fa.Content,
		Timestamp:    fa.Timestamp,
		Unread:       fa.Unread,
		Priority:     models.Priority(fa.Priority),
		Location:     fa.Location,
		IssueRef:     fa.IssueRef,
		Participants: fa.Participants,
		Avatar:       fa.Avatar,
		CreatedAt:    created,
	}, nil
}
