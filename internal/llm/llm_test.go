package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClassifyPrompt(t *testing.T) {
	t.Run("with location", func(t *testing.T) {
		system, user := buildClassifyPrompt("Pothole near the bus stand", "Gandhi Road")

		assert.Contains(t, system, "JSON object")
		assert.Contains(t, system, `"title"`)
		assert.Contains(t, system, `"type"`)
		assert.Contains(t, system, `"priority"`)

		assert.Contains(t, user, "Location: Gandhi Road")
		assert.Contains(t, user, "Pothole near the bus stand")
	})

	t.Run("without location", func(t *testing.T) {
		_, user := buildClassifyPrompt("Loud music", "")
		assert.NotContains(t, user, "Location:")
		assert.Contains(t, user, "Loud music")
	})

	t.Run("system prompt lists valid types and priorities", func(t *testing.T) {
		system, _ := buildClassifyPrompt("x", "")
		for _, v := range []string{"infrastructure", "safety", "environment", "noise", "low", "medium", "high"} {
			assert.Contains(t, system, `"`+v+`"`)
		}
	})

	t.Run("long content kept whole", func(t *testing.T) {
		content := strings.Repeat("x", 10000)
		_, user := buildClassifyPrompt(content, "")
		assert.Contains(t, user, content)
	})
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    *ClassifiedReport
		wantErr bool
	}{
		{
			name: "plain json",
			text: `{"title":"Open manhole","type":"safety","priority":"high","reason":"Risk of injury"}`,
			want: &ClassifiedReport{Title: "Open manhole", Type: "safety", Priority: "high", Reason: "Risk of injury"},
		},
		{
			name: "fenced and mixed case",
			text: "```json\n{\"title\":\"Noise\",\"type\":\"Noise\",\"priority\":\" LOW \"}\n```",
			want: &ClassifiedReport{Title: "Noise", Type: "noise", Priority: "low"},
		},
		{name: "not json", text: "I think this is safety", wantErr: true},
		{name: "unknown type", text: `{"type":"weather","priority":"low"}`, wantErr: true},
		{name: "unknown priority", text: `{"type":"noise","priority":"urgent"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient("test-key", "claude-sonnet-4-5")
	require.NotNil(t, c)
	assert.Equal(t, "claude-sonnet-4-5", string(c.model))
}
