package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/services/i18n"
)

// LanguagesHandler serves the display-language dictionary endpoints
type LanguagesHandler struct {
	i18n   *i18n.Service
	logger arbor.ILogger
}

// NewLanguagesHandler creates a languages handler
func NewLanguagesHandler(service *i18n.Service, logger arbor.ILogger) *LanguagesHandler {
	return &LanguagesHandler{
		i18n:   service,
		logger: logger,
	}
}

// ListHandler returns the available language codes
func (h *LanguagesHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"languages": h.i18n.Languages(),
		"default":   h.i18n.DefaultLanguage(),
	})
}

// GetHandler returns the merged strings for one language
func (h *LanguagesHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	code := h.i18n.Resolve(r.PathValue("code"))
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"language": code,
		"strings":  h.i18n.Merged(code),
	})
}

// RegisterHandler registers a custom dictionary
func (h *LanguagesHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var dict i18n.Dictionary
	if err := DecodeJSON(r, &dict); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.i18n.RegisterCustom(&dict); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"language": dict.Language})
}
