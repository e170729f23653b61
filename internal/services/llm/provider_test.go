package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/models"
)

func TestNewServiceUnknownProvider(t *testing.T) {
	config := common.DefaultConfig()
	config.LLM.Provider = "bard"

	_, err := NewService(config, common.GetLogger())
	assert.Error(t, err)
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	config := common.DefaultConfig()

	config.LLM.Provider = "gemini"
	_, err := NewService(config, common.GetLogger())
	assert.Error(t, err)

	config.LLM.Provider = "claude"
	_, err = NewService(config, common.GetLogger())
	assert.Error(t, err)
}

func TestDecodeSummary(t *testing.T) {
	raw := `{"globalOverview": "two sources", "sourcesAnalysis": [{"title": "a", "type": "text", "summary": "s", "keyTopics": ["t"], "suggestedQuestions": ["q"]}]}`

	summary, err := decodeSummary(raw)
	require.NoError(t, err)
	assert.Equal(t, "two sources", summary.GlobalOverview)
	require.Len(t, summary.SourcesAnalysis, 1)
	assert.Equal(t, []string{"t"}, summary.SourcesAnalysis[0].KeyTopics)
}

func TestDecodeSummaryStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"globalOverview\": \"x\", \"sourcesAnalysis\": []}\n```"

	summary, err := decodeSummary(raw)
	require.NoError(t, err)
	assert.Equal(t, "x", summary.GlobalOverview)
}

func TestDecodeSummaryRejectsProse(t *testing.T) {
	_, err := decodeSummary("Here is your summary: everything is fine.")
	assert.Error(t, err)
}

func TestValidateSummaryEnforcesOneAnalysisPerSource(t *testing.T) {
	summary := &models.StructuredSummary{
		SourcesAnalysis: []models.SourceAnalysis{{Title: "a"}, {Title: "b"}},
	}

	assert.NoError(t, validateSummary(summary, 2))
	assert.Error(t, validateSummary(summary, 3))
	assert.Error(t, validateSummary(summary, 1))
	assert.Error(t, validateSummary(nil, 0))
}

func TestSummaryPromptListsAllSources(t *testing.T) {
	sources := []*models.Source{
		{Title: "Paper", Type: models.SourceTypePDF, Content: "pdf text"},
		{Title: "Site", Type: models.SourceTypeURL, URL: "https://example.com"},
	}

	prompt := summaryPrompt(sources, "fr")

	assert.Contains(t, prompt, "French")
	assert.Contains(t, prompt, "exactly 2 entries")
	assert.Contains(t, prompt, "Paper")
	assert.Contains(t, prompt, "pdf text")
	// Remote sources are referenced by address, not content
	assert.Contains(t, prompt, "Address: https://example.com")
}

func TestChatSystemGroundsOnSources(t *testing.T) {
	sources := []*models.Source{
		{Title: "Notes", Type: models.SourceTypeText, Content: "the roadmap"},
	}

	system := chatSystem(sources, "en")

	assert.Contains(t, system, "English")
	assert.Contains(t, system, "Notes")
	assert.Contains(t, system, "the roadmap")
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", languageName(""))
	assert.Equal(t, "English", languageName("en"))
	assert.Equal(t, "Spanish", languageName("es"))
	assert.Equal(t, "xx", languageName("xx"))
}
