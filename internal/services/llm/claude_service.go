package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// ClaudeService implements the LLMService interface using the Anthropic API.
type ClaudeService struct {
	config    *common.LLMConfig
	logger    arbor.ILogger
	client    *anthropic.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
}

var _ interfaces.LLMService = (*ClaudeService)(nil)

// NewClaudeService creates a new Claude LLM service instance
func NewClaudeService(config *common.LLMConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.Claude.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set via FABLAB_CLAUDE_API_KEY or llm.claude.api_key in config)")
	}

	if config.Claude.Model == "" {
		config.Claude.Model = "claude-sonnet-4-20250514"
	}

	maxTokens := config.Claude.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.Claude.APIKey),
	)

	service := &ClaudeService{
		config:    config,
		logger:    logger,
		client:    &client,
		limiter:   newLimiter(config.RequestsPerMinute),
		timeout:   config.ParseTimeout(),
		maxTokens: maxTokens,
	}

	logger.Info().
		Str("model", config.Claude.Model).
		Dur("timeout", service.timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized")

	return service, nil
}

// GenerateSourceSummary produces a structured summary of the given sources.
func (s *ClaudeService) GenerateSourceSummary(ctx context.Context, sources []*models.Source, language string) (*models.StructuredSummary, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("sources cannot be empty for summary generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Claude.Model),
		MaxTokens: int64(s.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: "Respond with strict JSON only. No markdown fences, no prose outside the JSON object."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(summaryPrompt(sources, language))),
		},
	}
	if s.config.Claude.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Claude.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	raw := claudeText(resp)
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
func (s *ClaudeService) Chat(ctx context.Context, history []*models.ChatMessage, sources []*models.Source, message string, language string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty for chat completion")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	claudeMessages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		if msg.Role == models.ChatRoleModel {
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		} else {
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}
	claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Claude.Model),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
		System: []anthropic.TextBlockParam{
			{Text: chatSystem(sources, language)},
		},
	}
	if s.config.Claude.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Claude.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	response := claudeText(resp)
	if response == "" {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response, nil
}

// HealthCheck verifies the Anthropic API is reachable with a minimal probe.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("Claude client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Claude.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	}

	resp, err := s.client.Messages.New(healthCtx, params)
	if err != nil {
		return fmt.Errorf("Claude probe failed: %w", err)
	}
	if strings.TrimSpace(claudeText(resp)) == "" {
		return fmt.Errorf("Claude probe returned empty response")
	}

	return nil
}

// Provider returns the provider name
func (s *ClaudeService) Provider() string {
	return "claude"
}

// Close releases the client reference
func (s *ClaudeService) Close() error {
	s.logger.Info().Msg("Closing Claude LLM service")
	s.client = nil
	return nil
}

func claudeText(resp *anthropic.Message) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
