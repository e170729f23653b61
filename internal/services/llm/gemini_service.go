package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// GeminiService implements the LLMService interface using the Gemini API.
type GeminiService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

var _ interfaces.LLMService = (*GeminiService)(nil)

// summarySchema constrains structured-summary responses so the provider
// returns parseable JSON instead of prose.
var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"globalOverview": {Type: genai.TypeString},
		"sourcesAnalysis": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":              {Type: genai.TypeString},
					"type":               {Type: genai.TypeString},
					"summary":            {Type: genai.TypeString},
					"keyTopics":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"suggestedQuestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"title", "type", "summary", "keyTopics", "suggestedQuestions"},
			},
		},
	},
	Required: []string{"globalOverview", "sourcesAnalysis"},
}

// NewGeminiService creates a new Gemini LLM service instance
func NewGeminiService(config *common.LLMConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set via FABLAB_GEMINI_API_KEY or llm.gemini.api_key in config)")
	}

	if config.Gemini.ChatModel == "" {
		config.Gemini.ChatModel = "gemini-2.0-flash"
	}
	if config.Gemini.SummaryModel == "" {
		config.Gemini.SummaryModel = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: newLimiter(config.RequestsPerMinute),
		timeout: config.ParseTimeout(),
	}

	logger.Info().
		Str("chat_model", config.Gemini.ChatModel).
		Str("summary_model", config.Gemini.SummaryModel).
		Dur("timeout", service.timeout).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// GenerateSourceSummary produces a structured summary of the given sources.
func (s *GeminiService) GenerateSourceSummary(ctx context.Context, sources []*models.Source, language string) (*models.StructuredSummary, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("sources cannot be empty for summary generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("source_count", len(sources)).
		Str("language", language).
		Msg("Starting summary generation")

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.config.Gemini.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(summaryPrompt(sources, language), genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Gemini.SummaryModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	raw := extractText(resp)
	if raw == "" {
		return nil, fmt.Errorf("no response generated from summary model")
	}

	summary, err := decodeSummary(raw)
	if err != nil {
		return nil, err
	}
	if err := validateSummary(summary, len(sources)); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("source_count", len(sources)).
		Dur("duration", time.Since(startTime)).
		Msg("Summary generation completed")

	return summary, nil
}

// Chat answers a user message grounded in the given sources.
func (s *GeminiService) Chat(ctx context.Context, history []*models.ChatMessage, sources []*models.Source, message string, language string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty for chat completion")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == models.ChatRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(s.config.Gemini.Temperature),
		SystemInstruction: genai.NewContentFromText(chatSystem(sources, language), genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Gemini.ChatModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	response := extractText(resp)
	if response == "" {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response, nil
}

// HealthCheck verifies the Gemini API is reachable with a minimal probe.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)}
	resp, err := s.client.Models.GenerateContent(healthCtx, s.config.Gemini.ChatModel, contents, nil)
	if err != nil {
		return fmt.Errorf("chat probe failed: %w", err)
	}
	if strings.TrimSpace(extractText(resp)) == "" {
		return fmt.Errorf("chat probe returned empty response")
	}

	return nil
}

// Provider returns the provider name
func (s *GeminiService) Provider() string {
	return "gemini"
}

// Close releases the client reference
func (s *GeminiService) Close() error {
	s.logger.Info().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}

// extractText concatenates text parts from the first candidate that has any.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
