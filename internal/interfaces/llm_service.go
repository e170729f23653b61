package interfaces

import (
	"context"

	"github.com/fablabhq/fablab/internal/models"
)

// LLMService abstracts the LLM provider used for summaries and chat
type LLMService interface {
	// GenerateSourceSummary produces a structured summary of the given
	// sources in the requested display language. The result carries exactly
	// one analysis entry per input source, in input order.
	GenerateSourceSummary(ctx context.Context, sources []*models.Source, language string) (*models.StructuredSummary, error)

	// Chat answers a user message grounded in the given sources, with the
	// prior history for context.
	Chat(ctx context.Context, history []*models.ChatMessage, sources []*models.Source, message string, language string) (string, error)

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error

	// Provider returns the provider name ("gemini" or "claude")
	Provider() string

	// Close releases provider resources
	Close() error
}
