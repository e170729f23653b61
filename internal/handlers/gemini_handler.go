package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// GeminiHandler exposes the stateless LLM endpoints. Unlike the session
// endpoints, callers supply the sources and history themselves.
type GeminiHandler struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewGeminiHandler creates an LLM proxy handler. The service may be nil
// when no provider is configured; requests then return 503.
func NewGeminiHandler(llm interfaces.LLMService, logger arbor.ILogger) *GeminiHandler {
	return &GeminiHandler{
		llm:    llm,
		logger: logger,
	}
}

// SourceSummaryHandler generates a structured summary for the supplied
// sources
func (h *GeminiHandler) SourceSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		WriteError(w, http.StatusServiceUnavailable, "No LLM provider configured")
		return
	}

	var req struct {
		Sources  []*models.Source `json:"sources"`
		Language string           `json:"language"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Sources) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one source is required")
		return
	}

	summary, err := h.llm.GenerateSourceSummary(r.Context(), req.Sources, req.Language)
	if err != nil {
		h.logger.Error().Err(err).Msg("Summary generation failed")
		WriteError(w, http.StatusBadGateway, "Summary generation failed")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// ChatHandler answers a single chat turn for the supplied context
func (h *GeminiHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		WriteError(w, http.StatusServiceUnavailable, "No LLM provider configured")
		return
	}

	var req struct {
		History  []*models.ChatMessage `json:"history"`
		Sources  []*models.Source      `json:"sources"`
		Message  string                `json:"message"`
		Language string                `json:"language"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.llm.Chat(r.Context(), req.History, req.Sources, req.Message, req.Language)
	if err != nil {
		h.logger.Error().Err(err).Msg("Chat request failed")
		WriteError(w, http.StatusBadGateway, "Chat request failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
