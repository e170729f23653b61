package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/models"
)

func sampleSummary() *models.StructuredSummary {
	return &models.StructuredSummary{
		GlobalOverview: "Two sources about distributed systems.",
		SourcesAnalysis: []models.SourceAnalysis{
			{
				Title:              "Raft paper",
				Type:               "pdf",
				Summary:            "Consensus made understandable.",
				KeyTopics:          []string{"consensus", "leader election"},
				SuggestedQuestions: []string{"How does leader election work?"},
			},
			{
				Title:   "Blog post",
				Type:    "url",
				Summary: "Practical notes on running Raft.",
			},
		},
	}
}

func TestSummaryMarkdown(t *testing.T) {
	svc := NewService(common.GetLogger())

	md := svc.SummaryMarkdown("Source Summary", sampleSummary())

	assert.True(t, strings.HasPrefix(md, "# Source Summary"))
	assert.Contains(t, md, "## Overview")
	assert.Contains(t, md, "Two sources about distributed systems.")
	assert.Contains(t, md, "## Raft paper")
	assert.Contains(t, md, "- consensus")
	assert.Contains(t, md, "### Suggested Questions")
	assert.Contains(t, md, "## Blog post")
	// Sections without topics or questions are omitted entirely
	assert.Equal(t, 1, strings.Count(md, "### Key Topics"))
}

func TestRenderHTML(t *testing.T) {
	svc := NewService(common.GetLogger())

	md := svc.SummaryMarkdown("Source Summary", sampleSummary())
	page, err := svc.RenderHTML("Source Summary", md)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Source Summary</title>")
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "Raft paper")
}

func TestRenderPDF(t *testing.T) {
	svc := NewService(common.GetLogger())

	md := svc.SummaryMarkdown("Source Summary", sampleSummary())
	doc, err := svc.RenderPDF("Source Summary", md)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(doc), "%PDF"))
}
