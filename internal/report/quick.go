package report

import (
	"strings"

	"github.com/joescharf/civic/internal/models"
)

// Template is a one-tap report that prefills the form.
type Template struct {
	Key         string           `json:"key"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Type        models.IssueType `json:"type"`
	Priority    models.Priority  `json:"priority"`
	Emergency   bool             `json:"emergency,omitempty"`
}

// Form returns a form prefilled from the template.
func (t Template) Form() Form {
	return Form{
		Description: t.Description,
		Type:        string(t.Type),
		Priority:    string(t.Priority),
	}
}

// Apply returns f with the template filling any empty description, type
// or priority.
func (t Template) Apply(f Form) Form {
	if strings.TrimSpace(f.Description) == "" {
		f.Description = t.Description
	}
	if f.Type == "" {
		f.Type = string(t.Type)
	}
	if f.Priority == "" {
		f.Priority = string(t.Priority)
	}
	return f
}

// QuickReports returns the emergency template followed by the infrastructure
// templates, in display order.
func QuickReports() []Template {
	return []Template{
		{
			Key:         "emergency",
			Label:       "Emergency",
			Description: "Emergency: Immediate assistance required",
			Type:        models.IssueTypeSafety,
			Priority:    models.PriorityHigh,
			Emergency:   true,
		},
		{
			Key:         "roads",
			Label:       "Roads",
			Description: "Road maintenance issue: Potholes, damaged pavement, or road surface problems",
			Type:        models.IssueTypeInfrastructure,
			Priority:    models.PriorityMedium,
		},
		{
			Key:         "electrical",
			Label:       "Electrical",
			Description: "Electrical infrastructure issue: Power outage, streetlight malfunction, or electrical hazard",
			Type:        models.IssueTypeInfrastructure,
			Priority:    models.PriorityHigh,
		},
		{
			Key:         "water",
			Label:       "Water",
			Description: "Water infrastructure issue: Water leak, drainage problem, or water supply disruption",
			Type:        models.IssueTypeInfrastructure,
			Priority:    models.PriorityHigh,
		},
		{
			Key:         "traffic",
			Label:       "Traffic",
			Description: "Traffic infrastructure issue: Traffic light malfunction, damaged signage, or parking problems",
			Type:        models.IssueTypeSafety,
			Priority:    models.PriorityMedium,
		},
		{
			Key:         "parks",
			Label:       "Parks",
			Description: "Public space issue: Park maintenance, tree damage, or public facility problems",
			Type:        models.IssueTypeEnvironment,
			Priority:    models.PriorityLow,
		},
		{
			Key:         "lighting",
			Label:       "Street Lighting",
			Description: "Street lighting issue: Broken streetlights, inadequate lighting, or lighting safety concerns",
			Type:        models.IssueTypeSafety,
			Priority:    models.PriorityMedium,
		},
	}
}

// QuickReport looks up a template by key, case-insensitively.
func QuickReport(key string) (Template, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, t := range QuickReports() {
		if t.Key == key {
			return t, true
		}
	}
	return Template{}, false
}
