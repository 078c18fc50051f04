// Package inbox filters and searches community alerts.
package inbox

import (
	"fmt"
	"strings"

	"github.com/joescharf/civic/internal/models"
)

// Tab is one of the inbox filter tabs.
type Tab string

const (
	TabAll           Tab = "all"
	TabChats         Tab = "chats"
	TabNotifications Tab = "notifications"
	TabAnnouncements Tab = "announcements"
)

// Tabs returns the filter tabs in display order.
func Tabs() []Tab {
	return []Tab{TabAll, TabChats, TabNotifications, TabAnnouncements}
}

// ParseTab converts user input to a Tab. Empty input means TabAll.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabAll, nil
	case TabAll, TabChats, TabNotifications, TabAnnouncements:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab: %s (use all, chats, notifications, announcements)", s)
	}
}

// Label returns the button label for the tab.
func (t Tab) Label() string {
	switch t {
	case TabChats:
		return "Chats"
	case TabNotifications:
		return "Updates"
	case TabAnnouncements:
		return "News"
	default:
		return "All"
	}
}

// Types returns the alert types shown under the tab; nil means every type.
// Urgent alerts are grouped with announcements.
func (t Tab) Types() []models.AlertType {
	switch t {
	case TabChats:
		return []models.AlertType{models.AlertTypeChat}
	case TabNotifications:
		return []models.AlertType{models.AlertTypeNotification}
	case TabAnnouncements:
		return []models.AlertType{models.AlertTypeAnnouncement, models.AlertTypeAlert}
	default:
		return nil
	}
}

// Includes reports whether alerts of type at appear under the tab.
func (t Tab) Includes(at models.AlertType) bool {
	types := t.Types()
	if types == nil {
		return true
	}
	for _, ty := range types {
		if ty == at {
			return true
		}
	}
	return false
}

// Matches reports whether query occurs, case-insensitively, in the alert's
// title, content or sender. An empty query matches everything.
func Matches(a *models.Alert, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Content), q) ||
		(a.Sender != "" && strings.Contains(strings.ToLower(a.Sender), q))
}

// Filter returns the alerts matching both query and tab, preserving order.
func Filter(alerts []*models.Alert, query string, tab Tab) []*models.Alert {
	var out []*models.Alert
	for _, a := range alerts {
		if tab.Includes(a.Type) && Matches(a, query) {
			out = append(out, a)
		}
	}
	return out
}

// TabCounts returns how many alerts fall under each tab, ignoring any search.
func TabCounts(alerts []*models.Alert) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs()))
	for _, tab := range Tabs() {
		counts[tab] = 0
	}
	for _, a := range alerts {
		for _, tab := range Tabs() {
			if tab.Includes(a.Type) {
				counts[tab]++
			}
		}
	}
	return counts
}

// UnreadCount returns the number of unread alerts.
func UnreadCount(alerts []*models.Alert) int {
	n := 0
	for _, a := range alerts {
		if a.Unread {
			n++
		}
	}
	return n
}
