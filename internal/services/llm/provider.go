package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// NewService creates the configured LLM provider. Unknown providers are an
// error; a missing API key is reported by the provider constructor.
func NewService(config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch strings.ToLower(config.LLM.Provider) {
	case "", "gemini":
		return NewGeminiService(&config.LLM, logger)
	case "claude":
		return NewClaudeService(&config.LLM, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.LLM.Provider)
	}
}

// newLimiter builds a per-provider rate limiter from the configured
// requests-per-minute budget.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// summaryPrompt builds the structured-summary instruction for the given
// sources. The provider is asked for strict JSON with one analysis entry per
// source, in order.
func summaryPrompt(sources []*models.Source, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following %d source(s) and respond in %s.\n", len(sources), languageName(language))
	b.WriteString("Return a JSON object with this exact shape:\n")
	b.WriteString(`{"globalOverview": string, "sourcesAnalysis": [{"title": string, "type": string, "summary": string, "keyTopics": [string], "suggestedQuestions": [string]}]}`)
	b.WriteString("\n")
	fmt.Fprintf(&b, "The sourcesAnalysis array must contain exactly %d entries, one per source, in the order given below.\n\n", len(sources))

	for i, src := range sources {
		fmt.Fprintf(&b, "--- Source %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\nType: %s\n", src.Title, src.Type)
		writeSourceBody(&b, src)
		b.WriteString("\n")
	}

	return b.String()
}

// chatSystem builds the grounding system instruction for chat turns.
func chatSystem(sources []*models.Source, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a research assistant. Answer in %s, grounded only in the sources below. ", languageName(language))
	b.WriteString("If the sources do not cover the question, say so.\n\n")

	for i, src := range sources {
		fmt.Fprintf(&b, "--- Source %d: %s (%s) ---\n", i+1, src.Title, src.Type)
		writeSourceBody(&b, src)
		b.WriteString("\n")
	}

	return b.String()
}

func writeSourceBody(b *strings.Builder, src *models.Source) {
	switch src.Type {
	case models.SourceTypeURL, models.SourceTypeVideo:
		fmt.Fprintf(b, "Address: %s\n", src.URL)
	default:
		fmt.Fprintf(b, "Content:\n%s\n", src.Content)
	}
}

// languageName maps a language code to its display name for prompts.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "", "en":
		return "English"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	case "de":
		return "German"
	case "it":
		return "Italian"
	case "pt":
		return "Portuguese"
	default:
		return code
	}
}

// decodeSummary parses a provider response into a structured summary,
// tolerating markdown code fences around the JSON body.
func decodeSummary(raw string) (*models.StructuredSummary, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var summary models.StructuredSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary response: %w", err)
	}
	return &summary, nil
}

// validateSummary enforces the one-analysis-per-source contract at the
// provider boundary so downstream rendering never sees a partial summary.
func validateSummary(summary *models.StructuredSummary, sourceCount int) error {
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}
	if len(summary.SourcesAnalysis) != sourceCount {
		return fmt.Errorf("summary analysis count mismatch: expected %d, got %d", sourceCount, len(summary.SourcesAnalysis))
	}
	return nil
}
