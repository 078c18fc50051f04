package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
)

func TestStatusTone(t *testing.T) {
	assert.Equal(t, ToneSuccess, StatusTone(models.IssueStatusResolved))
	assert.Equal(t, ToneWarning, StatusTone(models.IssueStatusInProgress))
	assert.Equal(t, ToneDanger, StatusTone(models.IssueStatusPending))
	assert.Equal(t, ToneMuted, StatusTone("closed"))
}

func TestPriorityTone(t *testing.T) {
	assert.Equal(t, ToneDanger, PriorityTone(models.PriorityHigh))
	assert.Equal(t, ToneWarning, PriorityTone(models.PriorityMedium))
	assert.Equal(t, ToneSuccess, PriorityTone(models.PriorityLow))
	assert.Equal(t, ToneMuted, PriorityTone(""))
}

func TestAlertPriorityTone(t *testing.T) {
	assert.Equal(t, ToneCaution, AlertPriorityTone(models.PriorityMedium))
	assert.Equal(t, ToneInfo, AlertPriorityTone(""))
}

// Every enum value must have its own case rather than landing on the fallback.
func TestLookupTables_CoverEveryValue(t *testing.T) {
	for _, s := range models.AllIssueStatuses() {
		assert.NotEqual(t, ToneMuted, StatusTone(s), "status %s", s)
	}
	for _, p := range models.AllPriorities() {
		assert.NotEqual(t, ToneMuted, PriorityTone(p), "priority %s", p)
		assert.NotEqual(t, ToneInfo, AlertPriorityTone(p), "alert priority %s", p)
	}
	for _, ty := range models.AllIssueTypes() {
		assert.NotEqual(t, "map-pin", TypeIcon(ty), "type %s", ty)
	}
	icons := map[string]bool{}
	for _, a := range models.AllAlertTypes() {
		icons[AlertIcon(a)] = true
	}
	assert.Len(t, icons, len(models.AllAlertTypes()), "alert icons should be distinct")

	assert.Equal(t, ToneDanger, AlertTone(models.AlertTypeAlert))
	assert.Equal(t, ToneSuccess, AlertTone(models.AlertTypeNotification))
	assert.Equal(t, "check-circle", StatusIcon(models.IssueStatusResolved))
	assert.Equal(t, "clock", StatusIcon(models.IssueStatusInProgress))
	assert.Equal(t, "alert-triangle", StatusIcon(models.IssueStatusPending))
}

func TestStepTone(t *testing.T) {
	tests := []struct {
		name string
		view lifecycle.StepView
		want Tone
	}{
		{"resolved done", lifecycle.StepView{Stage: models.StageResolved, Completed: true}, ToneSuccess},
		{"reported done", lifecycle.StepView{Stage: models.StageReported, Completed: true, Current: true}, ToneInfo},
		{"in progress active", lifecycle.StepView{Stage: models.StageInProgress, Current: true}, ToneWarning},
		{"assigned active", lifecycle.StepView{Stage: models.StageAssigned, Current: true}, ToneInfo},
		{"pending", lifecycle.StepView{Stage: models.StageAssigned}, ToneMuted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepTone(tt.view))
		})
	}
}

func TestConnectorTone(t *testing.T) {
	views := lifecycle.ProjectEvents([]models.TimelineEvent{{Stage: models.StageReported}}, models.StageAssigned)
	assert.Equal(t, ToneInfo, ConnectorTone(views, 0))
	assert.Equal(t, ToneMuted, ConnectorTone(views, 1))
}
