package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapAPISourceType(t *testing.T) {
	tests := []struct {
		apiType  string
		expected SourceType
	}{
		{"DOC", SourceTypePDF},
		{"PDF", SourceTypePDF},
		{"IMAGE", SourceTypeImage},
		{"VIDEO", SourceTypeVideo},
		{"TEXT", SourceTypeText},
		{"CODE", SourceTypeCode},
		{"WEBSITE", SourceTypeURL},
		{"HTML", SourceTypeHTML},
		{"CONFIG", SourceTypeConfig},
		{"TRANSLATION", SourceTypeTranslation},
	}

	for _, tt := range tests {
		t.Run(tt.apiType, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapAPISourceType(tt.apiType))
		})
	}
}

func TestMapAPISourceTypeCaseInsensitive(t *testing.T) {
	assert.Equal(t, SourceTypePDF, MapAPISourceType("doc"))
	assert.Equal(t, SourceTypeURL, MapAPISourceType("Website"))
	assert.Equal(t, SourceTypeImage, MapAPISourceType(" image "))
}

func TestMapAPISourceTypeUnknownFallsBackToText(t *testing.T) {
	assert.Equal(t, SourceTypeText, MapAPISourceType("SPREADSHEET"))
	assert.Equal(t, SourceTypeText, MapAPISourceType(""))
}

func TestMapAPISourceToLocal(t *testing.T) {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	api := &APISource{
		ID:        "src_1",
		SessionID: "ses_1",
		Name:      "report.pdf",
		Type:      "DOC",
		Content:   "extracted text",
		FilePath:  "/previews/abc.pdf",
		CreatedAt: created,
	}

	local := MapAPISourceToLocal(api)

	assert.Equal(t, "src_1", local.ID)
	assert.Equal(t, "report.pdf", local.Title)
	assert.Equal(t, SourceTypePDF, local.Type)
	assert.Equal(t, "DOC", local.BackendType)
	assert.Equal(t, "extracted text", local.Content)
	assert.Equal(t, "/previews/abc.pdf", local.URL)
	assert.Equal(t, "/previews/abc.pdf", local.PreviewURL)
	assert.Equal(t, created, local.DateAdded)
	assert.False(t, local.Selected)
}
