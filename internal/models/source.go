package models

import (
	"strings"
	"time"
)

// SourceType classifies a source for preview rendering and LLM context
// assembly.
type SourceType string

const (
	SourceTypePDF         SourceType = "pdf"
	SourceTypeURL         SourceType = "url"
	SourceTypeText        SourceType = "text"
	SourceTypeVideo       SourceType = "video"
	SourceTypeImage       SourceType = "image"
	SourceTypeHTML        SourceType = "html"
	SourceTypeTranslation SourceType = "translation"
	SourceTypeCode        SourceType = "code"
	SourceTypeConfig      SourceType = "config"
)

// apiTypeMap maps backend API type discriminators to local source types.
// Lookup is case-insensitive; unknown values fall back to text.
var apiTypeMap = map[string]SourceType{
	"DOC":         SourceTypePDF,
	"PDF":         SourceTypePDF,
	"IMAGE":       SourceTypeImage,
	"VIDEO":       SourceTypeVideo,
	"TEXT":        SourceTypeText,
	"CODE":        SourceTypeCode,
	"WEBSITE":     SourceTypeURL,
	"HTML":        SourceTypeHTML,
	"CONFIG":      SourceTypeConfig,
	"TRANSLATION": SourceTypeTranslation,
}

// MapAPISourceType converts a backend type discriminator to a local
// SourceType. Unknown discriminators map to text so the source still renders.
func MapAPISourceType(apiType string) SourceType {
	if t, ok := apiTypeMap[strings.ToUpper(strings.TrimSpace(apiType))]; ok {
		return t
	}
	return SourceTypeText
}

// Source is a session-local view of a backend source record.
type Source struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        SourceType `json:"type"`
	BackendType string     `json:"backendType,omitempty"`
	Content     string     `json:"content,omitempty"`
	URL         string     `json:"url,omitempty"`
	PreviewURL  string     `json:"previewUrl,omitempty"`
	DateAdded   time.Time  `json:"dateAdded"`
	Selected    bool       `json:"selected"`
}

// APISource is the persisted backend representation of a source.
type APISource struct {
	ID        string    `json:"id" badgerhold:"key"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MapAPISourceToLocal converts a backend source record to the session-local
// shape. Selected is false; callers decide selection on merge.
func MapAPISourceToLocal(api *APISource) *Source {
	return &Source{
		ID:          api.ID,
		Title:       api.Name,
		Type:        MapAPISourceType(api.Type),
		BackendType: api.Type,
		Content:     api.Content,
		URL:         api.FilePath,
		PreviewURL:  api.FilePath,
		DateAdded:   api.CreatedAt,
		Selected:    false,
	}
}
