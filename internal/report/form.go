// Package report turns a resident's report form into a persisted issue.
package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joescharf/civic/internal/models"
)

var (
	ErrEmptyDescription = errors.New("please add details before submitting")
	ErrInvalidType      = errors.New("invalid issue type")
	ErrInvalidPriority  = errors.New("invalid priority")
)

const maxTitleRunes = 60

// Form is the data captured by the add-issue screen. Type and Priority may be
// left empty for the classifier to fill in.
type Form struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description"`
	Type        string  `json:"type,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Location    string  `json:"location,omitempty"`
	MapX        float64 `json:"map_x,omitempty"`
	MapY        float64 `json:"map_y,omitempty"`
	Photo       bool    `json:"photo,omitempty"`
	Audio       bool    `json:"audio,omitempty"`
	GPS         bool    `json:"gps,omitempty"`
}

// Validate checks the form. Only the description is required.
func Validate(f Form) error {
	if strings.TrimSpace(f.Description) == "" {
		return ErrEmptyDescription
	}
	if f.Type != "" && !models.IssueType(f.Type).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, f.Type)
	}
	if f.Priority != "" && !models.Priority(f.Priority).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, f.Priority)
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyDescription) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidPriority)
}

// TitleFromDescription returns the first non-empty line of desc, truncated to
// 60 runes with a trailing ellipsis.
func TitleFromDescription(desc string) string {
	line := ""
	for _, l := range strings.Split(desc, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	r := []rune(line)
	return strings.TrimSpace(string(r[:maxTitleRunes-1])) + "…"
}
