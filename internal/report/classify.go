package report

import (
	"context"
	"strings"
	"unicode"

	"github.com/joescharf/civic/internal/models"
)

// Classification is an inferred type and priority for a description.
type Classification struct {
	Type     models.IssueType `json:"type"`
	Priority models.Priority  `json:"priority"`
}

// Classifier infers a classification from free text.
type Classifier interface {
	Classify(ctx context.Context, description string) (Classification, error)
}

// KeywordClassifier classifies with keyword heuristics. It never fails.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, description string) (Classification, error) {
	return Classification{
		Type:     classifyType(description),
		Priority: classifyPriority(description),
	}, nil
}

// classifyType checks safety keywords first so that "broken streetlight
// hazard" lands on safety rather than infrastructure. Defaults to
// infrastructure.
func classifyType(desc string) models.IssueType {
	lower := strings.ToLower(desc)

	safety := []string{
		"emergency", "hazard", "danger", "unsafe", "accident",
		"traffic light", "traffic signal", "crossing", "streetlight", "street light",
		"lighting", "fire", "crime",
	}
	if containsAny(lower, safety) {
		return models.IssueTypeSafety
	}

	noise := []string{"noise", "noisy", "loud", "music", "barking", "construction at night"}
	if containsAny(lower, noise) {
		return models.IssueTypeNoise
	}

	environment := []string{
		"garbage", "trash", "litter", "waste", "dump", "tree", "park",
		"pollution", "smell", "sewage", "graffiti",
	}
	if containsAny(lower, environment) {
		return models.IssueTypeEnvironment
	}

	return models.IssueTypeInfrastructure
}

// classifyPriority checks high keywords before low. Defaults to medium.
func classifyPriority(desc string) models.Priority {
	lower := strings.ToLower(desc)

	high := []string{
		"emergency", "urgent", "immediate", "danger", "hazard", "accident",
		"injur", "flood", "burst", "outage", "fire", "blocked",
	}
	if containsAny(lower, high) {
		return models.PriorityHigh
	}

	low := []string{"minor", "cosmetic", "small", "when possible", "graffiti", "faded"}
	if containsAny(lower, low) {
		return models.PriorityLow
	}

	return models.PriorityMedium
}

// containsAny matches phrases as substrings and single words as word
// prefixes, so "tree" matches "trees" but not "street".
func containsAny(s string, keywords []string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(s, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}
