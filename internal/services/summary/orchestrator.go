package summary

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// Orchestrator drives structured-summary generation for a session. Each
// observed change to the selected sources or display language starts a new
// generation; responses from superseded generations are discarded, so the
// visible summary always matches the latest request.
type Orchestrator struct {
	llm    interfaces.LLMService
	events interfaces.EventService
	logger arbor.ILogger

	mu           sync.Mutex
	state        models.SummaryState
	summary      *models.StructuredSummary
	err          error
	generation   uint64
	lastCount    int
	lastLanguage string
	cancel       context.CancelFunc
	closed       bool

	wg sync.WaitGroup
}

// NewOrchestrator creates a summary orchestrator for a session. A nil LLM
// service is tolerated; generation is then skipped and the state stays idle.
func NewOrchestrator(llm interfaces.LLMService, events interfaces.EventService, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		llm:    llm,
		events: events,
		logger: logger,
		state:  models.SummaryStateIdle,
	}
}

// Observe reports the current selection and language. When nothing is
// selected any summary is cleared; when the selection count or language
// changed, a new generation starts and any in-flight one is cancelled.
func (o *Orchestrator) Observe(selected []*models.Source, language string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	count := len(selected)

	if count == 0 {
		changed := o.lastCount != 0 || o.state != models.SummaryStateIdle
		o.lastCount = 0
		o.lastLanguage = language
		if !changed {
			return
		}
		o.generation++
		o.cancelInflight()
		o.state = models.SummaryStateIdle
		o.summary = nil
		o.err = nil
		o.events.Publish(interfaces.Event{Type: interfaces.EventSummaryCleared})
		o.logger.Debug().Msg("Summary cleared")
		return
	}

	if count == o.lastCount && language == o.lastLanguage {
		return
	}

	o.lastCount = count
	o.lastLanguage = language

	if o.llm == nil {
		o.logger.Warn().Msg("No LLM service configured, skipping summary generation")
		return
	}

	o.generation++
	gen := o.generation
	o.cancelInflight()

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.state = models.SummaryStateLoading
	o.err = nil

	o.logger.Info().
		Int("source_count", count).
		Str("language", language).
		Msg("Summary generation started")

	o.wg.Add(1)
	go o.generate(ctx, gen, selected, language)
}

// generate runs one summary generation and applies the result only if the
// generation is still current.
func (o *Orchestrator) generate(ctx context.Context, gen uint64, sources []*models.Source, language string) {
	defer o.wg.Done()

	summary, err := o.llm.GenerateSourceSummary(ctx, sources, language)

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.logger.Debug().Msg("Discarding stale summary response")
		return
	}

	if err != nil {
		// No automatic retry; the next selection change starts a new
		// generation.
		o.state = models.SummaryStateIdle
		o.summary = nil
		o.err = err
		o.logger.Error().Err(err).Msg("Summary generation failed")
		return
	}

	o.state = models.SummaryStateReady
	o.summary = summary
	o.err = nil
	o.events.Publish(interfaces.Event{Type: interfaces.EventSummaryReady, Payload: summary})
	o.logger.Info().
		Int("analysis_count", len(summary.SourcesAnalysis)).
		Msg("Summary ready")
}

// Snapshot returns the current state, summary and last error.
func (o *Orchestrator) Snapshot() (models.SummaryState, *models.StructuredSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.summary, o.err
}

// Wait blocks until no generation is in flight.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels any in-flight generation and stops the orchestrator.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.generation++
	o.cancelInflight()
	o.mu.Unlock()

	o.wg.Wait()
}

// cancelInflight cancels the running generation. Caller holds the lock.
func (o *Orchestrator) cancelInflight() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
