package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/models"
	"github.com/fablabhq/fablab/internal/services/export"
	"github.com/fablabhq/fablab/internal/services/i18n"
	"github.com/fablabhq/fablab/internal/services/sessions"
)

// SessionsHandler serves the notebook session lifecycle, chat and export
// endpoints.
type SessionsHandler struct {
	sessions *sessions.Manager
	export   *export.Service
	i18n     *i18n.Service
	logger   arbor.ILogger
}

// NewSessionsHandler creates a sessions handler
func NewSessionsHandler(manager *sessions.Manager, exportService *export.Service, i18nService *i18n.Service, logger arbor.ILogger) *SessionsHandler {
	return &SessionsHandler{
		sessions: manager,
		export:   exportService,
		i18n:     i18nService,
		logger:   logger,
	}
}

type sessionResponse struct {
	ID           string                    `json:"id"`
	Language     string                    `json:"language"`
	Sources      []*models.Source          `json:"sources"`
	SummaryState models.SummaryState       `json:"summaryState"`
	Summary      *models.StructuredSummary `json:"summary,omitempty"`
	SummaryError string                    `json:"summaryError,omitempty"`
}

func (h *SessionsHandler) sessionView(session *sessions.Session) sessionResponse {
	state, summary, err := session.Summary.Snapshot()
	resp := sessionResponse{
		ID:           session.ID,
		Language:     session.Language(),
		Sources:      session.Sources.List(),
		SummaryState: state,
		Summary:      summary,
	}
	if err != nil {
		resp.SummaryError = err.Error()
	}
	return resp
}

// CreateHandler creates a new session
func (h *SessionsHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Create()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	WriteJSON(w, http.StatusCreated, h.sessionView(session))
}

// GetHandler returns the current state of a session
func (h *SessionsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, h.sessionView(session))
}

// DeleteHandler disposes a session
func (h *SessionsHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Dispose(id); err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to dispose session")
		WriteError(w, http.StatusInternalServerError, "Failed to dispose session")
		return
	}

	WriteSuccess(w, "Session disposed")
}

// SetLanguageHandler changes the session's display language
func (h *SessionsHandler) SetLanguageHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		WriteError(w, http.StatusBadRequest, "Language is required")
		return
	}

	session.SetLanguage(h.i18n.Resolve(req.Language))

	WriteJSON(w, http.StatusOK, map[string]string{"language": session.Language()})
}

// GetSummaryHandler returns the current summary snapshot
func (h *SessionsHandler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	state, summary, err := session.Summary.Snapshot()
	resp := map[string]interface{}{
		"state":   state,
		"summary": summary,
	}
	if err != nil {
		resp["error"] = err.Error()
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ChatHandler appends a user message and returns the model reply
func (h *SessionsHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply := session.Chat.Send(r.Context(), req.Message, session.Sources.Selected(), session.Language())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reply":   reply,
		"history": session.Chat.History(),
	})
}

// ChatHistoryHandler returns the session's chat history
func (h *SessionsHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": session.Chat.History(),
	})
}

// ExportHandler renders the session summary in the requested format
func (h *SessionsHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	state, summary, _ := session.Summary.Snapshot()
	if state != models.SummaryStateReady || summary == nil {
		WriteError(w, http.StatusConflict, "Summary is not ready")
		return
	}

	title := "Source Summary"
	markdown := h.export.SummaryMarkdown(title, summary)

	format := r.URL.Query().Get("format")
	switch format {
	case "", "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.md"`)
		w.Write([]byte(markdown))
	case "html":
		page, err := h.export.RenderHTML(title, markdown)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to render HTML export")
			WriteError(w, http.StatusInternalServerError, "Failed to render export")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	case "pdf":
		doc, err := h.export.RenderPDF(title, markdown)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to render PDF export")
			WriteError(w, http.StatusInternalServerError, "Failed to render export")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.pdf"`)
		w.Write(doc)
	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format: %s", format))
	}
}

// session resolves the session from the request path, writing the error
// response on failure.
func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	id := r.PathValue("id")
	session, err := h.sessions.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return session, true
}
