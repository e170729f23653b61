package sources

import (
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// PreviewReleaser releases locally stored preview files when their owning
// source is removed.
type PreviewReleaser interface {
	Owns(url string) bool
	Release(sourceID string)
}

// Registry holds the session-local source list. Backend records are the
// durable truth; the registry layers selection state and preview URLs on
// top. All methods are safe for concurrent use: accessors hand out copies,
// never pointers into the live list.
type Registry struct {
	sessionID string
	sources   []*models.Source
	storage   interfaces.SourceStorage
	previews  PreviewReleaser
	events    interfaces.EventService
	logger    arbor.ILogger
	mu        sync.Mutex
}

// NewRegistry creates a source registry for a session
func NewRegistry(sessionID string, storage interfaces.SourceStorage, previews PreviewReleaser, events interfaces.EventService, logger arbor.ILogger) *Registry {
	return &Registry{
		sessionID: sessionID,
		sources:   make([]*models.Source, 0),
		storage:   storage,
		previews:  previews,
		events:    events,
		logger:    logger,
	}
}

// Load merges backend records into the local list. Records already known
// locally keep their state (selection, preview URL); only unseen IDs are
// appended, unselected.
func (r *Registry) Load() error {
	apiSources, err := r.storage.ListSources(r.sessionID)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[string]bool, len(r.sources))
	for _, src := range r.sources {
		known[src.ID] = true
	}

	added := 0
	for _, api := range apiSources {
		if known[api.ID] {
			continue
		}
		r.sources = append(r.sources, models.MapAPISourceToLocal(api))
		added++
	}

	r.logger.Debug().
		Str("session_id", r.sessionID).
		Int("backend_count", len(apiSources)).
		Int("added", added).
		Msg("Sources loaded")

	return nil
}

// Add persists a new source and appends it to the local list, selected.
// Nothing is added locally until the backend write succeeds.
func (r *Registry) Add(name, backendType, content, filePath string) (*models.Source, error) {
	api := &models.APISource{
		SessionID: r.sessionID,
		Name:      name,
		Type:      backendType,
		Content:   content,
		FilePath:  filePath,
	}

	if err := r.storage.CreateSource(api); err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	local := models.MapAPISourceToLocal(api)
	local.Selected = true

	r.mu.Lock()
	r.sources = append(r.sources, local)
	r.mu.Unlock()

	r.logger.Info().
		Str("session_id", r.sessionID).
		Str("source_id", local.ID).
		Str("type", string(local.Type)).
		Msg("Source added")

	added := clone(local)
	r.events.Publish(interfaces.Event{Type: interfaces.EventSourceCreated, Payload: added})

	return added, nil
}

// Toggle flips a source's selection state. It is a purely local operation;
// the backend is never consulted.
func (r *Registry) Toggle(id string) (bool, error) {
	r.mu.Lock()
	var toggled *models.Source
	for _, src := range r.sources {
		if src.ID == id {
			src.Selected = !src.Selected
			toggled = clone(src)
			break
		}
	}
	r.mu.Unlock()

	if toggled == nil {
		return false, interfaces.ErrSourceNotFound
	}

	r.events.Publish(interfaces.Event{Type: interfaces.EventSourceToggled, Payload: toggled})

	return toggled.Selected, nil
}

// Delete removes a source from the backend and then locally. A backend
// failure leaves the local list untouched and is surfaced to the caller.
// Locally stored previews are released on success.
func (r *Registry) Delete(id string) error {
	if err := r.storage.DeleteSource(id); err != nil {
		r.logger.Warn().
			Err(err).
			Str("source_id", id).
			Msg("Failed to delete source")
		return fmt.Errorf("failed to delete source: %w", err)
	}

	r.mu.Lock()
	var removed *models.Source
	for i, src := range r.sources {
		if src.ID == id {
			removed = src
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if removed != nil && removed.PreviewURL != "" && r.previews.Owns(removed.PreviewURL) {
		r.previews.Release(id)
	}

	r.events.Publish(interfaces.Event{Type: interfaces.EventSourceDeleted, Payload: id})

	return nil
}

// List returns a snapshot of all sources in insertion order. Entries are
// copies; later toggles or preview updates do not show through, and callers
// can encode them without holding the registry lock.
func (r *Registry) List() []*models.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Source, len(r.sources))
	for i, src := range r.sources {
		out[i] = clone(src)
	}
	return out
}

// Selected returns a snapshot of the selected sources in insertion order.
func (r *Registry) Selected() []*models.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Source, 0, len(r.sources))
	for _, src := range r.sources {
		if src.Selected {
			out = append(out, clone(src))
		}
	}
	return out
}

// SelectedCount returns the number of selected sources.
func (r *Registry) SelectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, src := range r.sources {
		if src.Selected {
			count++
		}
	}
	return count
}

// Get returns a copy of the source with the given ID.
func (r *Registry) Get(id string) (*models.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, src := range r.sources {
		if src.ID == id {
			return clone(src), nil
		}
	}
	return nil, interfaces.ErrSourceNotFound
}

// SetPreviewURL records the local preview URL for a source.
func (r *Registry) SetPreviewURL(id, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, src := range r.sources {
		if src.ID == id {
			src.PreviewURL = url
			return
		}
	}
}

// clone copies a source so callers never hold a pointer into the live list.
// Source has no reference-typed fields, so a struct copy is a full copy.
func clone(src *models.Source) *models.Source {
	c := *src
	return &c
}
