package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/report"
)

// ClassifiedReport is the model's reading of a resident's report.
type ClassifiedReport struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Client wraps the Anthropic API for report classification.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

var _ report.Classifier = (*Client)(nil)

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildClassifyPrompt constructs the system and user prompts for classifying
// a civic issue report.
func buildClassifyPrompt(description, location string) (system string, user string) {
	system = `You triage civic issue reports submitted by residents to their city. Return ONLY a JSON object with these fields:
- "title": a concise title for the issue, at most 60 characters
- "type": one of "infrastructure", "safety", "environment", "noise"
- "priority": one of "low", "medium", "high"
- "reason": one short sentence explaining the classification

Rules:
- infrastructure: roads, potholes, water supply, drainage, power, public facilities
- safety: hazards to people, traffic lights and signs, street lighting, open manholes, emergencies
- environment: garbage, dumping, trees, parks, graffiti, pollution
- noise: loud music, construction noise, barking, any noise complaint
- high priority when people are at risk or a service is fully down; low for cosmetic problems; otherwise medium
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	if location != "" {
		sb.WriteString("Location: ")
		sb.WriteString(location)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Report:\n\n")
	sb.WriteString(description)
	user = sb.String()
	return
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

// parseClassification decodes the model's reply and rejects values outside
// the known enums.
func parseClassification(text string) (*ClassifiedReport, error) {
	text = stripFences(text)
	var out ClassifiedReport
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	out.Type = strings.ToLower(strings.TrimSpace(out.Type))
	out.Priority = strings.ToLower(strings.TrimSpace(out.Priority))
	if !models.IssueType(out.Type).Valid() {
		return nil, fmt.Errorf("LLM returned unknown type %q", out.Type)
	}
	if !models.Priority(out.Priority).Valid() {
		return nil, fmt.Errorf("LLM returned unknown priority %q", out.Priority)
	}
	return &out, nil
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}

// ClassifyReport asks the model for a title, type and priority.
func (c *Client) ClassifyReport(ctx context.Context, description, location string) (*ClassifiedReport, error) {
	system, user := buildClassifyPrompt(description, location)
	text, err := c.complete(ctx, system, user, 512)
	if err != nil {
		return nil, err
	}
	return parseClassification(text)
}

// Classify implements report.Classifier.
func (c *Client) Classify(ctx context.Context, description string) (report.Classification, error) {
	r, err := c.ClassifyReport(ctx, description, "")
	if err != nil {
		return report.Classification{}, err
	}
	return report.Classification{
		Type:     models.IssueType(r.Type),
		Priority: models.Priority(r.Priority),
	}, nil
}
