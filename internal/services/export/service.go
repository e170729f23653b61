package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/fablabhq/fablab/internal/models"
)

// Service renders structured summaries for download as markdown, HTML or
// PDF.
type Service struct {
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewService creates an export service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		logger: logger,
	}
}

// SummaryMarkdown renders a structured summary as a markdown document.
func (s *Service) SummaryMarkdown(title string, summary *models.StructuredSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)

	if summary.GlobalOverview != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(summary.GlobalOverview)
		b.WriteString("\n\n")
	}

	for _, analysis := range summary.SourcesAnalysis {
		fmt.Fprintf(&b, "## %s\n\n", analysis.Title)
		fmt.Fprintf(&b, "*Type: %s*\n\n", analysis.Type)
		b.WriteString(analysis.Summary)
		b.WriteString("\n\n")

		if len(analysis.KeyTopics) > 0 {
			b.WriteString("### Key Topics\n\n")
			for _, topic := range analysis.KeyTopics {
				fmt.Fprintf(&b, "- %s\n", topic)
			}
			b.WriteString("\n")
		}

		if len(analysis.SuggestedQuestions) > 0 {
			b.WriteString("### Suggested Questions\n\n")
			for _, question := range analysis.SuggestedQuestions {
				fmt.Fprintf(&b, "- %s\n", question)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderHTML converts a markdown document to a standalone HTML page.
func (s *Service) RenderHTML(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", title)
	page.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.5}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), nil
}

// RenderPDF converts a markdown document to a simple PDF. Headings become
// bold section titles; everything else flows as body text.
func (s *Service) RenderPDF(title, markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(4)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case strings.HasPrefix(trimmed, "### "):
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr(strings.TrimPrefix(trimmed, "### ")), "", "L", false)
		case strings.HasPrefix(trimmed, "## "):
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, tr(strings.TrimPrefix(trimmed, "## ")), "", "L", false)
		case strings.HasPrefix(trimmed, "# "):
			continue // Document title already rendered
		case strings.HasPrefix(trimmed, "- "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("  - "+strings.TrimPrefix(trimmed, "- ")), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(stripEmphasis(trimmed)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func stripEmphasis(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	return strings.Trim(line, "*")
}
