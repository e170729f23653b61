package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
	"github.com/fablabhq/fablab/internal/services/tools"
)

// ToolsHandler serves the tool CRUD endpoints plus the public read path.
// The caller identity comes from the X-User-ID header; without an auth
// layer every caller defaults to the local user.
type ToolsHandler struct {
	tools  *tools.Service
	logger arbor.ILogger
}

// NewToolsHandler creates a tools handler
func NewToolsHandler(service *tools.Service, logger arbor.ILogger) *ToolsHandler {
	return &ToolsHandler{
		tools:  service,
		logger: logger,
	}
}

func ownerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "local"
}

// CreateHandler creates a new tool
func (h *ToolsHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var tool models.Tool
	if err := DecodeJSON(r, &tool); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tool.OwnerID = ownerID(r)

	created, err := h.tools.Create(&tool)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// ListHandler returns the caller's tools
func (h *ToolsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.tools.List(ownerID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list tools")
		WriteError(w, http.StatusInternalServerError, "Failed to list tools")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"tools": list})
}

// GetHandler returns one of the caller's tools
func (h *ToolsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tool, err := h.tools.Get(r.PathValue("id"), ownerID(r))
	if err != nil {
		h.writeToolError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tool)
}

// GetPublicHandler returns a tool shared publicly by any owner. Tools that
// exist but are private yield 403, not 404, so a shared link explains
// itself.
func (h *ToolsHandler) GetPublicHandler(w http.ResponseWriter, r *http.Request) {
	tool, err := h.tools.GetPublic(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, tools.ErrToolNotPublic) {
			WriteError(w, http.StatusForbidden, "Tool is not public")
			return
		}
		h.writeToolError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tool)
}

// UpdateHandler applies a partial update to a tool
func (h *ToolsHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var update models.ToolUpdate
	if err := DecodeJSON(r, &update); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.tools.Update(r.PathValue("id"), ownerID(r), &update)
	if err != nil {
		if errors.Is(err, interfaces.ErrToolNotFound) || errors.Is(err, tools.ErrNotOwner) {
			h.writeToolError(w, err)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, tool)
}

// DeleteHandler removes a tool
func (h *ToolsHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tools.Delete(r.PathValue("id"), ownerID(r)); err != nil {
		h.writeToolError(w, err)
		return
	}

	WriteSuccess(w, "Tool deleted")
}

func (h *ToolsHandler) writeToolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrToolNotFound):
		WriteError(w, http.StatusNotFound, "Tool not found")
	case errors.Is(err, tools.ErrNotOwner):
		WriteError(w, http.StatusForbidden, "Tool is owned by another user")
	default:
		h.logger.Error().Err(err).Msg("Tool operation failed")
		WriteError(w, http.StatusInternalServerError, "Tool operation failed")
	}
}
