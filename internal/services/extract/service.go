package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// Service converts raw uploads into text content for LLM context assembly
type Service struct {
	converter *md.Converter
	tempDir   string
	logger    arbor.ILogger
}

var _ interfaces.ExtractService = (*Service)(nil)

// NewService creates a new extract service
func NewService(logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "fablab-extract")
	os.MkdirAll(tempDir, 0755)

	return &Service{
		converter: md.NewConverter("", true, nil),
		tempDir:   tempDir,
		logger:    logger,
	}
}

// Extract returns the textual content for the given input
func (s *Service) Extract(ctx context.Context, req interfaces.ExtractRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch req.Type {
	case models.SourceTypePDF:
		return s.extractPDF(req.Data)
	case models.SourceTypeHTML:
		return s.htmlToMarkdown(req.Text)
	case models.SourceTypeImage:
		// Images are carried inline for multimodal providers
		return base64.StdEncoding.EncodeToString(req.Data), nil
	case models.SourceTypeURL, models.SourceTypeVideo:
		// Remote sources are referenced by address, not fetched
		return req.URL, nil
	default:
		return req.Text, nil
	}
}

// HTMLTitle returns the document title of an HTML fragment, or empty when
// none is present.
func HTMLTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// htmlToMarkdown converts HTML to markdown, stripping tags as a fallback
// when conversion fails.
func (s *Service) htmlToMarkdown(html string) (string, error) {
	markdown, err := s.converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, stripping tags")
		return stripHTMLTags(html), nil
	}
	return markdown, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, " "))
}

// extractPDF extracts text content from PDF bytes using pdfcpu. pdfcpu
// operates on files, so the bytes are staged in a temp directory.
func (s *Service) extractPDF(data []byte) (string, error) {
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("extract_%d.pdf", os.Getpid()))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(s.tempDir, fmt.Sprintf("pages_%d", os.Getpid()))
	os.MkdirAll(outDir, 0755)
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok || text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", pageNum))
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}
