package lifecycle

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/civic/internal/models"
)

func ev(stage models.Stage, ts, desc string) models.TimelineEvent {
	return models.TimelineEvent{Stage: stage, Timestamp: ts, Description: desc}
}

func stagesOf(views []StepView) []models.Stage {
	out := make([]models.Stage, len(views))
	for i, v := range views {
		out[i] = v.Stage
	}
	return out
}

// --- Timeline ---

func TestTimeline_AppendAndAll(t *testing.T) {
	tl := NewTimeline()
	assert.Equal(t, 0, tl.Len())
	assert.Empty(t, tl.All())

	tl.Append(ev(models.StageReported, "2 days ago", "Issue reported by you"))
	tl.Append(ev(models.StageAssigned, "1 day ago", "Assigned to maintenance team"))

	all := tl.All()
	require.Len(t, all, 2)
	assert.Equal(t, models.StageReported, all[0].Stage)
	assert.Equal(t, models.StageAssigned, all[1].Stage)
}

func TestTimeline_AllIsReadOnlyCopy(t *testing.T) {
	tl := NewTimeline(ev(models.StageReported, "t1", "d1"))
	all := tl.All()
	all[0].Description = "mutated"

	got, ok := tl.Find(models.StageReported)
	require.True(t, ok)
	assert.Equal(t, "d1", got.Description)
}

func TestTimeline_FindAbsent(t *testing.T) {
	tl := NewTimeline(ev(models.StageReported, "t1", "d1"))
	_, ok := tl.Find(models.StageResolved)
	assert.False(t, ok)

	var nilLog *Timeline
	_, ok = nilLog.Find(models.StageReported)
	assert.False(t, ok)
}

func TestTimeline_FindReturnsFirstDuplicate(t *testing.T) {
	// Known limitation: later duplicates of a stage are never surfaced.
	tl := NewTimeline(
		ev(models.StageReported, "t1", "first report"),
		ev(models.StageReported, "t2", "second report"),
	)

	first, ok := tl.Find(models.StageReported)
	require.True(t, ok)
	assert.Equal(t, "first report", first.Description)

	again, ok := tl.Find(models.StageReported)
	require.True(t, ok)
	assert.Equal(t, first, again, "repeated Find should return the same event")
}

func TestTimeline_ConcurrentAppend(t *testing.T) {
	tl := NewTimeline()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tl.Append(ev(models.StageAssigned, fmt.Sprintf("t%d", i), "assigned"))
			_ = Project(tl, models.StageAssigned)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, tl.Len())
}

// --- Project ---

func TestProject_AlwaysFourEntriesInOrder(t *testing.T) {
	want := []models.Stage{models.StageReported, models.StageAssigned, models.StageInProgress, models.StageResolved}

	tests := []struct {
		name    string
		events  []models.TimelineEvent
		current models.Stage
	}{
		{"empty log", nil, models.StageReported},
		{"unknown current", nil, models.Stage("pending")},
		{"full log", []models.TimelineEvent{
			ev(models.StageReported, "t1", "d1"),
			ev(models.StageAssigned, "t2", "d2"),
			ev(models.StageInProgress, "t3", "d3"),
			ev(models.StageResolved, "t4", "d4"),
		}, models.StageResolved},
		{"reversed log", []models.TimelineEvent{
			ev(models.StageResolved, "t4", "d4"),
			ev(models.StageInProgress, "t3", "d3"),
			ev(models.StageReported, "t1", "d1"),
		}, models.StageAssigned},
		{"foreign stage in log", []models.TimelineEvent{
			ev(models.Stage("closed"), "t9", "d9"),
		}, models.StageReported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := ProjectEvents(tt.events, tt.current)
			require.Len(t, views, 4)
			assert.Equal(t, want, stagesOf(views))
		})
	}
}

func TestProject_CompletedIffStagePresent(t *testing.T) {
	logs := [][]models.TimelineEvent{
		nil,
		{ev(models.StageAssigned, "t", "d")},
		{ev(models.StageReported, "t", "d"), ev(models.StageResolved, "t", "d")},
		{ev(models.StageInProgress, "t", "d"), ev(models.StageInProgress, "t", "d")},
	}
	for i, log := range logs {
		present := map[models.Stage]bool{}
		for _, e := range log {
			present[e.Stage] = true
		}
		for _, v := range ProjectEvents(log, models.StageReported) {
			assert.Equal(t, present[v.Stage], v.Completed, "log %d stage %s", i, v.Stage)
		}
	}
}

func TestProject_CurrentIndependentOfCompleted(t *testing.T) {
	log := []models.TimelineEvent{ev(models.StageReported, "t1", "d1")}
	for _, current := range append(models.Stages(), models.Stage("pending")) {
		views := ProjectEvents(log, current)
		n := 0
		for _, v := range views {
			assert.Equal(t, v.Stage == current, v.Current, "current %s stage %s", current, v.Stage)
			if v.Current {
				n++
			}
		}
		if current.Valid() {
			assert.Equal(t, 1, n)
		} else {
			assert.Equal(t, 0, n)
		}
	}
}

func TestProject_SingleReportedEvent(t *testing.T) {
	views := ProjectEvents([]models.TimelineEvent{ev(models.StageReported, "t1", "d1")}, models.StageReported)

	assert.True(t, views[0].Completed)
	assert.True(t, views[0].Current)
	assert.Equal(t, "t1", views[0].Timestamp)
	assert.Equal(t, "d1", views[0].Description)

	for _, v := range views[1:] {
		assert.False(t, v.Completed, v.Stage)
		assert.False(t, v.Current, v.Stage)
		assert.Empty(t, v.Timestamp)
		assert.Empty(t, v.Description)
	}
}

func TestProject_InProgress(t *testing.T) {
	views := ProjectEvents([]models.TimelineEvent{
		ev(models.StageReported, "t1", "d1"),
		ev(models.StageAssigned, "t2", "d2"),
		ev(models.StageInProgress, "t3", "d3"),
	}, models.StageInProgress)

	assert.True(t, views[0].Completed)
	assert.False(t, views[0].Current)
	assert.True(t, views[1].Completed)
	assert.False(t, views[1].Current)
	assert.True(t, views[2].Completed)
	assert.True(t, views[2].Current)
	assert.False(t, views[3].Completed)
	assert.False(t, views[3].Current)
}

func TestProject_SkippedStagesTolerated(t *testing.T) {
	views := ProjectEvents([]models.TimelineEvent{
		ev(models.StageReported, "t1", "d1"),
		ev(models.StageResolved, "t2", "d2"),
	}, models.StageResolved)

	assert.True(t, views[0].Completed)
	assert.False(t, views[1].Completed)
	assert.False(t, views[1].Current)
	assert.False(t, views[2].Completed)
	assert.True(t, views[3].Completed)
	assert.True(t, views[3].Current)
}

func TestProject_DuplicateStageSurfacesFirst(t *testing.T) {
	// Known limitation kept on purpose until product decides how repeats display.
	views := ProjectEvents([]models.TimelineEvent{
		ev(models.StageAssigned, "t1", "Assigned to road crew"),
		ev(models.StageAssigned, "t2", "Reassigned to lighting team"),
	}, models.StageAssigned)

	assert.Equal(t, "t1", views[1].Timestamp)
	assert.Equal(t, "Assigned to road crew", views[1].Description)
}

func TestProject_AppendOutOfOrderKeepsFixedOrder(t *testing.T) {
	tl := NewTimeline()
	tl.Append(ev(models.StageInProgress, "t3", "d3"))
	tl.Append(ev(models.StageReported, "t1", "d1"))
	tl.Append(ev(models.StageAssigned, "t2", "d2"))

	views := Project(tl, models.StageInProgress)
	assert.Equal(t, models.Stages(), stagesOf(views))
	assert.Equal(t, "t1", views[0].Timestamp)
	assert.Equal(t, "t2", views[1].Timestamp)
	assert.Equal(t, "t3", views[2].Timestamp)
}

func TestProject_NilLog(t *testing.T) {
	views := Project(nil, models.StageAssigned)
	require.Len(t, views, 4)
	for _, v := range views {
		assert.False(t, v.Completed)
	}
	assert.True(t, views[1].Current)

	var nilTimeline *Timeline
	views = Project(nilTimeline, models.StageReported)
	require.Len(t, views, 4)
	assert.False(t, views[0].Completed)
}

func TestProject_DoesNotMutateLog(t *testing.T) {
	tl := NewTimeline(ev(models.StageReported, "t1", "d1"))
	before := tl.All()
	_ = Project(tl, models.StageResolved)
	assert.Equal(t, before, tl.All())
}

// --- StepView helpers ---

func TestStepView_State(t *testing.T) {
	tests := []struct {
		name      string
		completed bool
		current   bool
		want      StepState
	}{
		{"done", true, false, StepDone},
		{"done and current", true, true, StepDone},
		{"active", false, true, StepActive},
		{"pending", false, false, StepPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := StepView{Completed: tt.completed, Current: tt.current}
			assert.Equal(t, tt.want, v.State())
		})
	}
}

func TestCurrentDetail(t *testing.T) {
	views := ProjectEvents([]models.TimelineEvent{
		ev(models.StageReported, "t1", "Issue reported by you"),
		ev(models.StageAssigned, "t2", "Assigned to road maintenance crew"),
	}, models.StageAssigned)

	v, ok := CurrentDetail(views)
	require.True(t, ok)
	assert.Equal(t, "Assigned to road maintenance crew", v.Description)

	// Current but without an event has nothing to show.
	views = ProjectEvents(nil, models.StageInProgress)
	_, ok = CurrentDetail(views)
	assert.False(t, ok)
}

func TestConnectorFilled(t *testing.T) {
	views := ProjectEvents([]models.TimelineEvent{
		ev(models.StageReported, "t1", "d1"),
		ev(models.StageInProgress, "t3", "d3"),
	}, models.StageInProgress)

	assert.True(t, ConnectorFilled(views, 0))
	assert.False(t, ConnectorFilled(views, 1))
	assert.True(t, ConnectorFilled(views, 2))
	assert.False(t, ConnectorFilled(views, 3), "no connector after the last step")
	assert.False(t, ConnectorFilled(views, -1))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(nil))
	assert.Equal(t, 0, Progress(ProjectEvents(nil, models.StageReported)))
	assert.Equal(t, 50, Progress(ProjectEvents([]models.TimelineEvent{
		ev(models.StageReported, "", ""),
		ev(models.StageResolved, "", ""),
	}, models.StageResolved)))
}

func TestNext(t *testing.T) {
	tests := []struct {
		in   models.Stage
		want models.Stage
		ok   bool
	}{
		{models.StageReported, models.StageAssigned, true},
		{models.StageAssigned, models.StageInProgress, true},
		{models.StageInProgress, models.StageResolved, true},
		{models.StageResolved, "", false},
		{models.Stage("pending"), "", false},
	}
	for _, tt := range tests {
		got, ok := Next(tt.in)
		assert.Equal(t, tt.want, got, string(tt.in))
		assert.Equal(t, tt.ok, ok, string(tt.in))
	}
}

// --- Check ---

func kinds(ws []Warning) []WarningKind {
	out := make([]WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		events  []models.TimelineEvent
		current models.Stage
		want    []WarningKind
	}{
		{
			name:    "consistent",
			events:  []models.TimelineEvent{ev(models.StageReported, "", ""), ev(models.StageAssigned, "", "")},
			current: models.StageAssigned,
			want:    []WarningKind{},
		},
		{
			name:    "skipped stages are not flagged",
			events:  []models.TimelineEvent{ev(models.StageReported, "", ""), ev(models.StageResolved, "", "")},
			current: models.StageResolved,
			want:    []WarningKind{},
		},
		{
			name:    "current behind completed",
			events:  []models.TimelineEvent{ev(models.StageReported, "", ""), ev(models.StageInProgress, "", "")},
			current: models.StageReported,
			want:    []WarningKind{WarnCurrentBehind},
		},
		{
			name:    "duplicate stage",
			events:  []models.TimelineEvent{ev(models.StageReported, "", ""), ev(models.StageReported, "", "")},
			current: models.StageReported,
			want:    []WarningKind{WarnDuplicateStage},
		},
		{
			name:    "out of order",
			events:  []models.TimelineEvent{ev(models.StageAssigned, "", ""), ev(models.StageReported, "", "")},
			current: models.StageAssigned,
			want:    []WarningKind{WarnOutOfOrder},
		},
		{
			name:    "unknown event stage and current",
			events:  []models.TimelineEvent{ev(models.Stage("closed"), "", "")},
			current: models.Stage("pending"),
			want:    []WarningKind{WarnUnknownStage, WarnUnknownStage},
		},
		{
			name:    "empty log with valid current",
			events:  nil,
			current: models.StageReported,
			want:    []WarningKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.events, tt.current)
			assert.ElementsMatch(t, tt.want, kinds(got))
			for _, w := range got {
				assert.NotEmpty(t, w.String())
			}
		})
	}
}

func TestCheck_NeverChangesProjection(t *testing.T) {
	evs := []models.TimelineEvent{ev(models.StageResolved, "t4", "d4"), ev(models.StageReported, "t1", "d1")}
	before := ProjectEvents(evs, models.StageReported)
	_ = Check(evs, models.StageReported)
	assert.Equal(t, before, ProjectEvents(evs, models.StageReported))
}

func TestForIssue(t *testing.T) {
	issue := &models.Issue{
		ID:    "1",
		Title: "Pothole on Oak Street",
		Stage: models.StageAssigned,
		Timeline: []models.TimelineEvent{
			{Stage: models.StageReported, Timestamp: "1 day ago", Description: "Issue reported by you"},
			{Stage: models.StageAssigned, Timestamp: "6 hours ago", Description: "Assigned to road crew"},
		},
	}

	p := ForIssue(issue)
	assert.Equal(t, "1", p.IssueID)
	assert.Equal(t, models.IssueStatusPending, p.Status)
	require.Len(t, p.Steps, 4)
	assert.Equal(t, 50, p.Percent)
	require.NotNil(t, p.Current)
	assert.Equal(t, "Assigned to road crew", p.Current.Description)
	assert.Empty(t, p.Warnings)

	issue.Timeline = nil
	p = ForIssue(issue)
	assert.Nil(t, p.Current, "current step without an event has no detail")
	assert.Equal(t, 0, p.Percent)
}
