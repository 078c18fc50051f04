package cmd

import (
	"github.com/spf13/viper"

	"github.com/joescharf/civic/internal/llm"
	"github.com/joescharf/civic/internal/report"
)

// newLLMClient returns nil when no Anthropic key is configured.
func newLLMClient() *llm.Client {
	apiKey := newLLMKey()
	if apiKey == "" {
		return nil
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model"))
}

// newClassifier returns the LLM classifier when report.ai_classify is on and
// a key is configured, and keyword heuristics otherwise.
func newClassifier() report.Classifier {
	if !viper.GetBool("report.ai_classify") {
		return report.KeywordClassifier{}
	}
	client := newLLMClient()
	if client == nil {
		ui.Warning("report.ai_classify is set but no Anthropic API key is configured; using keywords")
		return report.KeywordClassifier{}
	}
	ui.VerboseLog("Classifying with %s", viper.GetString("anthropic.model"))
	return client
}
