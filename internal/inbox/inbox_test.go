package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/civic/internal/models"
)

func sampleAlerts() []*models.Alert {
	return []*models.Alert{
		{ID: "1", Type: models.AlertTypeAlert, Title: "Emergency Road Closure", Content: "Main Street is closed due to water pipe burst.", Unread: true, Priority: models.PriorityHigh},
		{ID: "3", Type: models.AlertTypeAnnouncement, Title: "Your Issue #124 - Status Update", Content: "Pothole repair on Gandhi Road has been scheduled."},
		{ID: "5", Type: models.AlertTypeChat, Sender: "Neighborhood Watch", Title: "Park Maintenance Updates", Content: "Discussion about the new playground equipment."},
		{ID: "6", Type: models.AlertTypeNotification, Title: "Issue Resolved - Thank You!", Content: "Your reported garbage collection issue has been resolved."},
		{ID: "7", Type: models.AlertTypeChat, Sender: "Local Business Forum", Title: "Traffic Signal Request", Content: "Business owners are supporting the request.", Unread: true},
	}
}

func ids(alerts []*models.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("")
	require.NoError(t, err)
	assert.Equal(t, TabAll, tab)

	tab, err = ParseTab("Chats")
	require.NoError(t, err)
	assert.Equal(t, TabChats, tab)

	_, err = ParseTab("inbox")
	assert.Error(t, err)
}

func TestTab_Labels(t *testing.T) {
	assert.Equal(t, "All", TabAll.Label())
	assert.Equal(t, "Chats", TabChats.Label())
	assert.Equal(t, "Updates", TabNotifications.Label())
	assert.Equal(t, "News", TabAnnouncements.Label())
}

func TestFilter(t *testing.T) {
	alerts := sampleAlerts()

	tests := []struct {
		name  string
		query string
		tab   Tab
		want  []string
	}{
		{"all no query", "", TabAll, []string{"1", "3", "5", "6", "7"}},
		{"chats", "", TabChats, []string{"5", "7"}},
		{"notifications", "", TabNotifications, []string{"6"}},
		{"announcements include alerts", "", TabAnnouncements, []string{"1", "3"}},
		{"search title case-insensitive", "ROAD", TabAll, []string{"1", "3"}},
		{"search content", "playground", TabAll, []string{"5"}},
		{"search sender", "business forum", TabAll, []string{"7"}},
		{"search and tab", "road", TabChats, []string{}},
		{"no matches", "zzz", TabAll, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(alerts, tt.query, tt.tab)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTabCounts(t *testing.T) {
	counts := TabCounts(sampleAlerts())
	assert.Equal(t, 5, counts[TabAll])
	assert.Equal(t, 2, counts[TabChats])
	assert.Equal(t, 1, counts[TabNotifications])
	assert.Equal(t, 2, counts[TabAnnouncements])

	empty := TabCounts(nil)
	assert.Len(t, empty, 4)
	assert.Equal(t, 0, empty[TabChats])
}

func TestUnreadCount(t *testing.T) {
	assert.Equal(t, 2, UnreadCount(sampleAlerts()))
	assert.Equal(t, 0, UnreadCount(nil))
}
