package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/services/chat"
	"github.com/fablabhq/fablab/internal/services/sources"
	"github.com/fablabhq/fablab/internal/services/summary"
)

// ErrSessionNotFound is returned when a session ID does not exist
var ErrSessionNotFound = errors.New("session not found")

// Session bundles the per-notebook state: the source registry, the summary
// orchestrator and the chat history, plus the display language.
type Session struct {
	ID      string
	Sources *sources.Registry
	Summary *summary.Orchestrator
	Chat    *chat.Session

	mu         sync.Mutex
	language   string
	lastActive time.Time
}

// Language returns the session's display language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage changes the display language and re-observes the selection so
// an existing summary is regenerated in the new language.
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	if language == "" || language == s.language {
		s.mu.Unlock()
		return
	}
	s.language = language
	s.mu.Unlock()

	s.Summary.Observe(s.Sources.Selected(), language)
}

// SyncSummary re-observes the current selection. Handlers call this after
// every source mutation.
func (s *Session) SyncSummary() {
	s.Summary.Observe(s.Sources.Selected(), s.Language())
}

// Refresh marks the session as recently used.
func (s *Session) Refresh() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Manager owns the live sessions. Sessions are created on demand, refreshed
// on every touch and evicted by a cron sweep once idle past the TTL.
type Manager struct {
	storage  interfaces.StorageManager
	previews sources.PreviewReleaser
	events   interfaces.EventService
	llm      interfaces.LLMService
	logger   arbor.ILogger

	ttl             time.Duration
	defaultLanguage string

	sessions map[string]*Session
	mu       sync.Mutex
	cron     *cron.Cron
}

// NewManager creates a session manager. The LLM service may be nil; summary
// and chat then degrade gracefully.
func NewManager(config *common.SessionsConfig, storage interfaces.StorageManager, previews sources.PreviewReleaser, events interfaces.EventService, llm interfaces.LLMService, logger arbor.ILogger) *Manager {
	defaultLanguage := config.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}

	m := &Manager{
		storage:         storage,
		previews:        previews,
		events:          events,
		llm:             llm,
		logger:          logger,
		ttl:             config.ParseTTL(),
		defaultLanguage: defaultLanguage,
		sessions:        make(map[string]*Session),
		cron:            cron.New(),
	}

	schedule := config.JanitorSchedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	if _, err := m.cron.AddFunc(schedule, m.sweep); err != nil {
		logger.Warn().Err(err).Str("schedule", schedule).Msg("Invalid janitor schedule, sweep disabled")
	}

	return m
}

// Start begins the eviction sweep.
func (m *Manager) Start() {
	m.cron.Start()
	m.logger.Info().
		Dur("ttl", m.ttl).
		Msg("Session manager started")
}

// Create builds a new session with its registry, orchestrator and chat, and
// loads any backend sources already recorded for it.
func (m *Manager) Create() (*Session, error) {
	id := common.NewSessionID()

	registry := sources.NewRegistry(id, m.storage.SourceStorage(), m.previews, m.events, m.logger)
	if err := registry.Load(); err != nil {
		return nil, err
	}

	session := &Session{
		ID:         id,
		Sources:    registry,
		Summary:    summary.NewOrchestrator(m.llm, m.events, m.logger),
		Chat:       chat.NewSession(m.llm, m.logger),
		language:   m.defaultLanguage,
		lastActive: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = session
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info().
		Str("session_id", id).
		Int("active_sessions", count).
		Msg("Session created")

	m.events.Publish(interfaces.Event{Type: interfaces.EventSessionCreated, Payload: id})

	return session, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Refresh()
	return session, nil
}

// Dispose tears a session down: the summary orchestrator is stopped, the
// session's backend sources and previews are removed, and the session is
// forgotten.
func (m *Manager) Dispose(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Summary.Close()

	for _, src := range session.Sources.List() {
		if src.PreviewURL != "" && m.previews.Owns(src.PreviewURL) {
			m.previews.Release(src.ID)
		}
	}

	if err := m.storage.SourceStorage().DeleteSessionSources(id); err != nil {
		m.logger.Warn().
			Err(err).
			Str("session_id", id).
			Msg("Failed to delete session sources")
	}

	m.logger.Info().
		Str("session_id", id).
		Msg("Session disposed")

	m.events.Publish(interfaces.Event{Type: interfaces.EventSessionDisposed, Payload: id})

	return nil
}

// sweep disposes sessions idle past the TTL.
func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []string
	for id, session := range m.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.logger.Info().
			Str("session_id", id).
			Msg("Evicting idle session")
		m.Dispose(id)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the sweep and disposes all sessions.
func (m *Manager) Close() error {
	ctx := m.cron.Stop()
	<-ctx.Done()

	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Dispose(id)
	}

	m.logger.Info().Msg("Session manager closed")
	return nil
}
