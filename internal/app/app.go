package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/handlers"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/services/events"
	"github.com/fablabhq/fablab/internal/services/export"
	"github.com/fablabhq/fablab/internal/services/extract"
	"github.com/fablabhq/fablab/internal/services/i18n"
	"github.com/fablabhq/fablab/internal/services/llm"
	"github.com/fablabhq/fablab/internal/services/previews"
	"github.com/fablabhq/fablab/internal/services/sessions"
	"github.com/fablabhq/fablab/internal/services/tools"
	"github.com/fablabhq/fablab/internal/storage/badger"
)

// Handlers bundles the HTTP handlers for route registration
type Handlers struct {
	API       *handlers.APIHandler
	Sessions  *handlers.SessionsHandler
	Sources   *handlers.SourcesHandler
	Gemini    *handlers.GeminiHandler
	Tools     *handlers.ToolsHandler
	Languages *handlers.LanguagesHandler
	WebSocket *handlers.WebSocketHandler
}

// App holds all application services and handlers
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Events   *events.Service
	Storage  interfaces.StorageManager
	Previews *previews.Store
	Extract  interfaces.ExtractService
	LLM      interfaces.LLMService
	Sessions *sessions.Manager
	Tools    *tools.Service
	I18n     *i18n.Service
	Export   *export.Service
	Handlers *Handlers
}

// New wires all services and handlers from configuration. The LLM provider
// is optional; without an API key the app starts degraded and summary/chat
// report their unavailability instead of failing startup.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	eventService := events.NewService(logger)

	storageManager, err := badger.NewManager(&config.Storage.Badger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	previewStore, err := previews.NewStore(config.Storage.Previews.Dir, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize preview store: %w", err)
	}

	extractService := extract.NewService(logger)

	llmService, err := llm.NewService(config, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("LLM provider unavailable, summary and chat disabled")
		llmService = nil
	}

	i18nService, err := i18n.NewService(&config.I18n, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize i18n: %w", err)
	}

	sessionManager := sessions.NewManager(&config.Sessions, storageManager, previewStore, eventService, llmService, logger)
	toolService := tools.NewService(storageManager.ToolStorage(), logger)
	exportService := export.NewService(logger)

	app := &App{
		Config:   config,
		Logger:   logger,
		Events:   eventService,
		Storage:  storageManager,
		Previews: previewStore,
		Extract:  extractService,
		LLM:      llmService,
		Sessions: sessionManager,
		Tools:    toolService,
		I18n:     i18nService,
		Export:   exportService,
	}

	app.Handlers = &Handlers{
		API:       handlers.NewAPIHandler(llmService, logger),
		Sessions:  handlers.NewSessionsHandler(sessionManager, exportService, i18nService, logger),
		Sources:   handlers.NewSourcesHandler(sessionManager, extractService, previewStore, logger),
		Gemini:    handlers.NewGeminiHandler(llmService, logger),
		Tools:     handlers.NewToolsHandler(toolService, logger),
		Languages: handlers.NewLanguagesHandler(i18nService, logger),
		WebSocket: handlers.NewWebSocketHandler(eventService, logger),
	}

	sessionManager.Start()

	logger.Info().
		Str("environment", config.Environment).
		Msg("Application initialized")

	return app, nil
}

// Close shuts down services in reverse dependency order
func (a *App) Close() {
	a.Handlers.WebSocket.Close()

	if err := a.Sessions.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Session manager close failed")
	}

	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM service close failed")
		}
	}

	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}

	if err := a.Events.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Event service close failed")
	}

	a.Logger.Info().Msg("Application stopped")
}
