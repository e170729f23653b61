package server

import (
	"net/http"

	"github.com/fablabhq/fablab/internal/services/previews"
)

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	h := s.app.Handlers

	// Service endpoints
	mux.HandleFunc("GET /api/v1/version", h.API.VersionHandler)
	mux.HandleFunc("GET /api/v1/health", h.API.HealthHandler)

	// Session lifecycle
	mux.HandleFunc("POST /api/v1/sessions", h.Sessions.CreateHandler)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.Sessions.GetHandler)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.Sessions.DeleteHandler)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/language", h.Sessions.SetLanguageHandler)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary", h.Sessions.GetSummaryHandler)
	mux.HandleFunc("GET /api/v1/sessions/{id}/export", h.Sessions.ExportHandler)

	// Session chat
	mux.HandleFunc("POST /api/v1/sessions/{id}/chat", h.Sessions.ChatHandler)
	mux.HandleFunc("GET /api/v1/sessions/{id}/chat", h.Sessions.ChatHistoryHandler)

	// Session sources
	mux.HandleFunc("GET /api/v1/sessions/{id}/sources", h.Sources.ListHandler)
	mux.HandleFunc("POST /api/v1/sessions/{id}/sources", h.Sources.AddHandler)
	mux.HandleFunc("POST /api/v1/sessions/{id}/sources/{sourceId}/toggle", h.Sources.ToggleHandler)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}/sources/{sourceId}", h.Sources.DeleteHandler)

	// Stateless LLM endpoints
	mux.HandleFunc("POST /api/v1/gemini/source-summary", h.Gemini.SourceSummaryHandler)
	mux.HandleFunc("POST /api/v1/gemini/chat", h.Gemini.ChatHandler)

	// Tools
	mux.HandleFunc("POST /api/v1/tools", h.Tools.CreateHandler)
	mux.HandleFunc("GET /api/v1/tools", h.Tools.ListHandler)
	mux.HandleFunc("GET /api/v1/tools/{id}", h.Tools.GetHandler)
	mux.HandleFunc("PATCH /api/v1/tools/{id}", h.Tools.UpdateHandler)
	mux.HandleFunc("PUT /api/v1/tools/{id}", h.Tools.UpdateHandler)
	mux.HandleFunc("DELETE /api/v1/tools/{id}", h.Tools.DeleteHandler)
	mux.HandleFunc("GET /api/v1/public/tools/{id}", h.Tools.GetPublicHandler)

	// Display languages
	mux.HandleFunc("GET /api/v1/languages", h.Languages.ListHandler)
	mux.HandleFunc("POST /api/v1/languages", h.Languages.RegisterHandler)
	mux.HandleFunc("GET /api/v1/languages/{code}", h.Languages.GetHandler)

	// Preview files for uploaded sources
	mux.Handle("GET "+previews.URLPrefix, s.app.Previews.Handler())

	// WebSocket event stream
	mux.Handle("GET /ws", h.WebSocket)

	return mux
}
