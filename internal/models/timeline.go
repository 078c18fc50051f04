package models

import "time"

// TimelineEvent records one observed stage transition.
// Timestamp is an opaque display label, not a parsed time.
type TimelineEvent struct {
	ID          string    `json:"id,omitempty"`
	IssueID     string    `json:"issue_id,omitempty"`
	Seq         int       `json:"seq,omitempty"`
	Stage       Stage     `json:"stage"`
	Timestamp   string    `json:"timestamp"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
