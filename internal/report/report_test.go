package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/civic/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{"description only", Form{Description: "Pothole"}, nil},
		{"full form", Form{Description: "Pothole", Type: "infrastructure", Priority: "high"}, nil},
		{"empty description", Form{}, ErrEmptyDescription},
		{"whitespace description", Form{Description: "  \n\t "}, ErrEmptyDescription},
		{"bad type", Form{Description: "x", Type: "weather"}, ErrInvalidType},
		{"bad priority", Form{Description: "x", Priority: "critical"}, ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestErrEmptyDescription_Message(t *testing.T) {
	assert.Equal(t, "please add details before submitting", ErrEmptyDescription.Error())
}

func TestTitleFromDescription(t *testing.T) {
	assert.Equal(t, "Pothole on Main Street", TitleFromDescription("\n  Pothole on Main Street\nIt is deep."))
	assert.Equal(t, "", TitleFromDescription("   "))

	long := strings.Repeat("a", 80)
	title := TitleFromDescription(long)
	assert.Equal(t, 60, len([]rune(title)))
	assert.True(t, strings.HasSuffix(title, "…"))
}

func TestQuickReports(t *testing.T) {
	qs := QuickReports()
	require.Len(t, qs, 7)
	assert.Equal(t, "emergency", qs[0].Key)
	assert.True(t, qs[0].Emergency)

	seen := map[string]bool{}
	for _, q := range qs {
		assert.False(t, seen[q.Key], "duplicate key %s", q.Key)
		seen[q.Key] = true
		assert.True(t, q.Type.Valid(), q.Key)
		assert.True(t, q.Priority.Valid(), q.Key)
		assert.NoError(t, Validate(q.Form()), q.Key)
	}

	water, ok := QuickReport(" Water ")
	require.True(t, ok)
	assert.Equal(t, "Water infrastructure issue: Water leak, drainage problem, or water supply disruption", water.Description)

	applied := water.Apply(Form{Location: "Lake Road", Priority: "low"})
	assert.Equal(t, water.Description, applied.Description)
	assert.Equal(t, "infrastructure", applied.Type)
	assert.Equal(t, "low", applied.Priority, "caller's priority wins")
	assert.Equal(t, "Lake Road", applied.Location)

	_, ok = QuickReport("snow")
	assert.False(t, ok)
}

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		desc     string
		wantType models.IssueType
		wantPrio models.Priority
	}{
		{"Pothole on Main Street", models.IssueTypeInfrastructure, models.PriorityMedium},
		{"Broken streetlight near the school", models.IssueTypeSafety, models.PriorityMedium},
		{"Loud music from the bar every night", models.IssueTypeNoise, models.PriorityMedium},
		{"Garbage not collected for a week", models.IssueTypeEnvironment, models.PriorityMedium},
		{"Water pipe burst on Main Street", models.IssueTypeInfrastructure, models.PriorityHigh},
		{"Minor graffiti on the park bench", models.IssueTypeEnvironment, models.PriorityLow},
		{"Emergency: Immediate assistance required", models.IssueTypeSafety, models.PriorityHigh},
		{"Fallen trees across the footpath", models.IssueTypeEnvironment, models.PriorityMedium},
		{"Traffic light not working at the crossing", models.IssueTypeSafety, models.PriorityMedium},
		{"Faded lane markings", models.IssueTypeInfrastructure, models.PriorityLow},
		{"POTHOLE CAUSED AN ACCIDENT", models.IssueTypeSafety, models.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := KeywordClassifier{}.Classify(context.Background(), tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantPrio, got.Priority)
		})
	}
}

func TestBuild(t *testing.T) {
	issue := Build(Form{Description: " Pothole on Main Street ", Photo: true, GPS: true}, "Priya", "Jan 15 10:30")

	assert.Equal(t, "Pothole on Main Street", issue.Title)
	assert.Equal(t, "Pothole on Main Street", issue.Description)
	assert.Equal(t, models.IssueTypeInfrastructure, issue.Type)
	assert.Equal(t, models.PriorityMedium, issue.Priority)
	assert.Equal(t, models.StageReported, issue.Stage)
	assert.Equal(t, models.IssueStatusPending, issue.Status())
	assert.True(t, issue.HasPhoto)
	assert.True(t, issue.HasLocation)
	assert.False(t, issue.HasAudio)
	assert.Equal(t, "Priya", issue.Reporter)

	require.Len(t, issue.Timeline, 1)
	ev := issue.Timeline[0]
	assert.Equal(t, models.StageReported, ev.Stage)
	assert.Equal(t, "Jan 15 10:30", ev.Timestamp)
	assert.Equal(t, "Issue reported by Priya", ev.Description)
}

func TestBuild_DefaultReporterAndExplicitTitle(t *testing.T) {
	issue := Build(Form{Title: "Noise", Description: "Loud", Type: "noise", Priority: "low"}, "", "now")
	assert.Equal(t, "Noise", issue.Title)
	assert.Equal(t, "you", issue.Reporter)
	assert.Equal(t, models.IssueTypeNoise, issue.Type)
	assert.Equal(t, models.PriorityLow, issue.Priority)
	assert.Equal(t, "Issue reported by you", issue.Timeline[0].Description)
}

type fakeCreator struct {
	created []*models.Issue
	err     error
}

func (f *fakeCreator) CreateIssue(_ context.Context, issue *models.Issue) error {
	if f.err != nil {
		return f.err
	}
	issue.ID = "01TEST"
	f.created = append(f.created, issue)
	return nil
}

type stubClassifier struct {
	out   Classification
	err   error
	calls int
}

func (s *stubClassifier) Classify(context.Context, string) (Classification, error) {
	s.calls++
	return s.out, s.err
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("validation error skips store", func(t *testing.T) {
		store := &fakeCreator{}
		_, err := Submit(ctx, store, nil, Form{Description: " "}, "you", "now")
		require.ErrorIs(t, err, ErrEmptyDescription)
		assert.Empty(t, store.created)
	})

	t.Run("classifier fills missing fields", func(t *testing.T) {
		store := &fakeCreator{}
		cl := &stubClassifier{out: Classification{Type: models.IssueTypeNoise, Priority: models.PriorityLow}}
		issue, err := Submit(ctx, store, cl, Form{Description: "Something", Priority: "high"}, "you", "now")
		require.NoError(t, err)
		assert.Equal(t, 1, cl.calls)
		assert.Equal(t, models.IssueTypeNoise, issue.Type)
		assert.Equal(t, models.PriorityHigh, issue.Priority, "explicit priority wins")
		assert.Equal(t, "01TEST", issue.ID)
		assert.Len(t, store.created, 1)
	})

	t.Run("classifier skipped when form complete", func(t *testing.T) {
		cl := &stubClassifier{}
		_, err := Submit(ctx, &fakeCreator{}, cl, Form{Description: "x", Type: "safety", Priority: "low"}, "you", "now")
		require.NoError(t, err)
		assert.Zero(t, cl.calls)
	})

	t.Run("classifier error falls back to keywords", func(t *testing.T) {
		cl := &stubClassifier{err: errors.New("api down")}
		issue, err := Submit(ctx, &fakeCreator{}, cl, Form{Description: "Loud music at night"}, "you", "now")
		require.NoError(t, err)
		assert.Equal(t, models.IssueTypeNoise, issue.Type)
	})

	t.Run("nil classifier uses keywords", func(t *testing.T) {
		issue, err := Submit(ctx, &fakeCreator{}, nil, Form{Description: "Emergency at the crossing"}, "you", "now")
		require.NoError(t, err)
		assert.Equal(t, models.IssueTypeSafety, issue.Type)
		assert.Equal(t, models.PriorityHigh, issue.Priority)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		_, err := Submit(ctx, &fakeCreator{err: boom}, nil, Form{Description: "x"}, "you", "now")
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "create issue")
	})
}
