package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/theme"
)

const stepWidth = 14

var lipglossTones = map[theme.Tone]lipgloss.Color{
	theme.ToneSuccess: lipgloss.Color("#2E7D32"),
	theme.ToneWarning: lipgloss.Color("#F9A825"),
	theme.ToneDanger:  lipgloss.Color("#D32F2F"),
	theme.ToneInfo:    lipgloss.Color("#1976D2"),
	theme.ToneCaution: lipgloss.Color("#EF6C00"),
	theme.ToneMuted:   lipgloss.Color("#9E9E9E"),
}

func toneStyle(t theme.Tone) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipglossTones[t])
}

// StepGlyph returns the marker drawn for a step: ✓ done, ● active, ○ pending.
func StepGlyph(v lifecycle.StepView) string {
	switch v.State() {
	case lifecycle.StepDone:
		return "✓"
	case lifecycle.StepActive:
		return "●"
	default:
		return "○"
	}
}

// RenderStepper draws the horizontal progress stepper: a marker per stage
// joined by connectors, with the stage label and timestamp beneath.
func RenderStepper(views []lifecycle.StepView) string {
	if len(views) == 0 {
		return ""
	}

	column := lipgloss.NewStyle().Width(stepWidth).Align(lipgloss.Center)
	var blocks []string
	for i, v := range views {
		tone := theme.StepTone(v)
		marker := toneStyle(tone).Bold(v.State() == lifecycle.StepActive).Render(StepGlyph(v))
		label := v.Label
		if v.Current {
			label = lipgloss.NewStyle().Bold(true).Render(label)
		}
		ts := v.Timestamp
		if ts == "" {
			ts = " "
		}
		blocks = append(blocks, column.Render(lipgloss.JoinVertical(lipgloss.Center,
			marker,
			label,
			toneStyle(theme.ToneMuted).Render(ts),
		)))

		if i < len(views)-1 {
			line := "┄┄┄"
			if lifecycle.ConnectorFilled(views, i) {
				line = "───"
			}
			blocks = append(blocks, toneStyle(theme.ConnectorTone(views, i)).Render(line))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// RenderCurrentDetail draws the "Current Status" box, or "" when no current
// step carries a description.
func RenderCurrentDetail(views []lifecycle.StepView) string {
	v, ok := lifecycle.CurrentDetail(views)
	if !ok {
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipglossTones[theme.StepTone(v)]).
		Padding(0, 1)
	body := fmt.Sprintf("Current Status: %s\n%s", v.Label, v.Description)
	if v.Timestamp != "" {
		body += "\n" + toneStyle(theme.ToneMuted).Render(v.Timestamp)
	}
	return box.Render(body)
}

// RenderTimeline lists every stage vertically with its event details, the
// expanded view of a tracked issue.
func RenderTimeline(views []lifecycle.StepView) string {
	var sb strings.Builder
	for i, v := range views {
		tone := theme.StepTone(v)
		sb.WriteString(toneStyle(tone).Render(StepGlyph(v)))
		sb.WriteString(" ")
		sb.WriteString(v.Label)
		if v.Timestamp != "" {
			sb.WriteString(toneStyle(theme.ToneMuted).Render("  " + v.Timestamp))
		}
		sb.WriteString("\n")
		if v.Description != "" {
			sb.WriteString("│   ")
			sb.WriteString(v.Description)
			sb.WriteString("\n")
		}
		if i < len(views)-1 {
			sb.WriteString(toneStyle(theme.ConnectorTone(views, i)).Render("│"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
