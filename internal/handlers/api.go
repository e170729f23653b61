package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
)

// APIHandler serves version and health endpoints
type APIHandler struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewAPIHandler creates an API handler
func NewAPIHandler(llm interfaces.LLMService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		llm:    llm,
		logger: logger,
	}
}

// VersionHandler returns build information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// HealthHandler reports service health. The LLM probe is best effort; a
// missing provider degrades the status without failing the endpoint.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
	}

	if h.llm == nil {
		resp["llm"] = "unconfigured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.llm.HealthCheck(ctx); err != nil {
			resp["llm"] = "unhealthy"
			resp["status"] = "degraded"
		} else {
			resp["llm"] = h.llm.Provider()
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}
