package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
	"github.com/fablabhq/fablab/internal/services/extract"
	"github.com/fablabhq/fablab/internal/services/previews"
	"github.com/fablabhq/fablab/internal/services/sessions"
)

const maxUploadSize = 32 << 20 // 32 MB

// SourcesHandler serves the per-session source endpoints
type SourcesHandler struct {
	sessions *sessions.Manager
	extract  interfaces.ExtractService
	previews *previews.Store
	logger   arbor.ILogger
}

// NewSourcesHandler creates a sources handler
func NewSourcesHandler(manager *sessions.Manager, extractService interfaces.ExtractService, previewStore *previews.Store, logger arbor.ILogger) *SourcesHandler {
	return &SourcesHandler{
		sessions: manager,
		extract:  extractService,
		previews: previewStore,
		logger:   logger,
	}
}

// ListHandler returns the session's sources
func (h *SourcesHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sources": session.Sources.List(),
	})
}

// AddHandler ingests a new source from a multipart form. The form carries
// either an uploaded file or inline content/URL fields, plus the backend
// type discriminator. The source is only added once extraction and the
// backend write succeed.
func (h *SourcesHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	backendType := strings.TrimSpace(r.FormValue("type"))
	content := r.FormValue("content")
	url := strings.TrimSpace(r.FormValue("url"))

	if backendType == "" {
		WriteError(w, http.StatusBadRequest, "Source type is required")
		return
	}

	localType := models.MapAPISourceType(backendType)

	var fileData []byte
	var fileName string
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		fileData, err = io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		fileName = header.Filename
	}

	// HTML may arrive inline or as a file upload; extraction and the name
	// default both read the document text
	if localType == models.SourceTypeHTML {
		if content == "" && len(fileData) > 0 {
			content = string(fileData)
		}
		if name == "" {
			name = extract.HTMLTitle(content)
		}
	}

	if name == "" {
		if fileName != "" {
			name = fileName
		} else if url != "" {
			name = url
		} else {
			WriteError(w, http.StatusBadRequest, "Source name is required")
			return
		}
	}

	extracted, err := h.extract.Extract(r.Context(), interfaces.ExtractRequest{
		Type: localType,
		Data: fileData,
		Text: content,
		URL:  url,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("type", string(localType)).
			Msg("Source extraction failed")
		WriteError(w, http.StatusUnprocessableEntity, "Failed to extract source content")
		return
	}

	source, err := session.Sources.Add(name, backendType, extracted, url)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to add source")
		WriteError(w, http.StatusInternalServerError, "Failed to add source")
		return
	}

	// Uploaded files get a locally served preview, keyed by the new source
	// so deletion releases it.
	if len(fileData) > 0 {
		previewURL, err := h.previews.Put(source.ID, fileName, fileData)
		if err != nil {
			h.logger.Warn().Err(err).Str("source_id", source.ID).Msg("Failed to store preview")
		} else {
			session.Sources.SetPreviewURL(source.ID, previewURL)
			source.PreviewURL = previewURL
		}
	}

	session.SyncSummary()

	WriteJSON(w, http.StatusCreated, source)
}

// ToggleHandler flips a source's selection state
func (h *SourcesHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	sourceID := r.PathValue("sourceId")
	selected, err := session.Sources.Toggle(sourceID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Source not found")
		return
	}

	session.SyncSummary()

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":       sourceID,
		"selected": selected,
	})
}

// DeleteHandler removes a source. Backend failures are surfaced; the local
// list is only updated when the backend delete succeeds.
func (h *SourcesHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	sourceID := r.PathValue("sourceId")
	if err := session.Sources.Delete(sourceID); err != nil {
		if errors.Is(err, interfaces.ErrSourceNotFound) {
			WriteError(w, http.StatusNotFound, "Source not found")
			return
		}
		h.logger.Error().
			Err(err).
			Str("source_id", sourceID).
			Msg("Failed to delete source")
		WriteError(w, http.StatusInternalServerError, "Failed to delete source")
		return
	}

	session.SyncSummary()

	WriteSuccess(w, "Source deleted")
}

func (h *SourcesHandler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	id := r.PathValue("id")
	session, err := h.sessions.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return session, true
}
