package interfaces

import (
	"context"

	"github.com/fablabhq/fablab/internal/models"
)

// ExtractRequest describes raw input to convert into source content
type ExtractRequest struct {
	Type models.SourceType
	Data []byte // Raw bytes for pdf and image inputs
	Text string // Inline text, code, config or HTML
	URL  string // Address for url and video inputs
}

// ExtractService converts raw uploads into text content suitable for LLM
// context assembly
type ExtractService interface {
	// Extract returns the textual content for the given input
	Extract(ctx context.Context, req ExtractRequest) (string, error)
}
