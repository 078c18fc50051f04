package models

import "time"

// AlertType is the kind of inbox entry.
type AlertType string

const (
	AlertTypeChat         AlertType = "chat"
	AlertTypeNotification AlertType = "notification"
	AlertTypeAnnouncement AlertType = "announcement"
	AlertTypeAlert        AlertType = "alert"
)

// AllAlertTypes returns every alert type.
func AllAlertTypes() []AlertType {
	return []AlertType{AlertTypeChat, AlertTypeNotification, AlertTypeAnnouncement, AlertTypeAlert}
}

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeChat, AlertTypeNotification, AlertTypeAnnouncement, AlertTypeAlert:
		return true
	}
	return false
}

// Alert is a community message, status update, or announcement.
type Alert struct {
	ID           string    `json:"id"`
	Type         AlertType `json:"type"`
	Sender       string    `json:"sender,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Timestamp    string    `json:"timestamp"`
	Unread       bool      `json:"unread"`
	Priority     Priority  `json:"priority,omitempty"` // empty when the alert carries no priority
	Location     string    `json:"location,omitempty"`
	IssueRef     string    `json:"issue_ref,omitempty"`
	Participants int       `json:"participants,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
