package summary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/models"
	"github.com/fablabhq/fablab/internal/services/events"
)

// gatedLLM blocks each summary call until released, so tests can control
// which generation finishes first.
type gatedLLM struct {
	mu      sync.Mutex
	gate    chan struct{}
	calls   int
	lastErr error
}

func newGatedLLM() *gatedLLM {
	return &gatedLLM{gate: make(chan struct{})}
}

func (g *gatedLLM) GenerateSourceSummary(ctx context.Context, sources []*models.Source, language string) (*models.StructuredSummary, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	gate := g.gate
	err := g.lastErr
	g.mu.Unlock()

	select {
	case <-gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err != nil {
		return nil, err
	}

	analysis := make([]models.SourceAnalysis, len(sources))
	for i, src := range sources {
		analysis[i] = models.SourceAnalysis{Title: src.Title, Type: string(src.Type), Summary: fmt.Sprintf("call %d", call)}
	}
	return &models.StructuredSummary{
		GlobalOverview:  fmt.Sprintf("overview %d in %s", call, language),
		SourcesAnalysis: analysis,
	}, nil
}

func (g *gatedLLM) release() {
	g.mu.Lock()
	close(g.gate)
	g.gate = make(chan struct{})
	g.mu.Unlock()
}

func (g *gatedLLM) Chat(ctx context.Context, history []*models.ChatMessage, sources []*models.Source, message, language string) (string, error) {
	return "", errors.New("not implemented")
}
func (g *gatedLLM) HealthCheck(ctx context.Context) error { return nil }

func (g *gatedLLM) Provider() string { return "fake" }

func (g *gatedLLM) Close() error { return nil }

func testSources(n int) []*models.Source {
	out := make([]*models.Source, n)
	for i := range out {
		out[i] = &models.Source{
			ID:       fmt.Sprintf("src_%d", i),
			Title:    fmt.Sprintf("source %d", i),
			Type:     models.SourceTypeText,
			Selected: true,
		}
	}
	return out
}

func newTestOrchestrator(llm *gatedLLM) *Orchestrator {
	logger := common.GetLogger()
	return NewOrchestrator(llm, events.NewService(logger), logger)
}

func waitForState(t *testing.T, o *Orchestrator, want models.SummaryState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, _, _ := o.Snapshot()
		if state == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	state, _, _ := o.Snapshot()
	t.Fatalf("state never reached %s, still %s", want, state)
}

func TestObserveGeneratesSummary(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(2), "en")

	state, _, _ := o.Snapshot()
	assert.Equal(t, models.SummaryStateLoading, state)

	llm.release()
	waitForState(t, o, models.SummaryStateReady)

	_, summary, err := o.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Len(t, summary.SourcesAnalysis, 2)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	// First generation starts and stalls
	o.Observe(testSources(1), "en")

	// Selection grows before the first response arrives; a second
	// generation starts
	o.Observe(testSources(3), "en")

	llm.release()
	llm.release()
	waitForState(t, o, models.SummaryStateReady)
	o.Wait()

	// Only the second generation's result is visible
	_, summary, err := o.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Len(t, summary.SourcesAnalysis, 3)
}

func TestZeroSelectionClearsSummary(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(1), "en")
	llm.release()
	waitForState(t, o, models.SummaryStateReady)

	o.Observe(nil, "en")

	state, summary, err := o.Snapshot()
	assert.Equal(t, models.SummaryStateIdle, state)
	assert.Nil(t, summary)
	assert.NoError(t, err)
}

func TestZeroSelectionClearsDuringInflightGeneration(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(2), "en")
	state, _, _ := o.Snapshot()
	require.Equal(t, models.SummaryStateLoading, state)

	// The selection empties while the request is still in flight
	o.Observe(nil, "en")

	state, summary, err := o.Snapshot()
	assert.Equal(t, models.SummaryStateIdle, state)
	assert.Nil(t, summary)
	assert.NoError(t, err)

	// The superseded response must not resurface once it completes
	llm.release()
	o.Wait()

	state, summary, err = o.Snapshot()
	assert.Equal(t, models.SummaryStateIdle, state)
	assert.Nil(t, summary)
	assert.NoError(t, err)
}

func TestUnchangedSelectionDoesNotRegenerate(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(2), "en")
	llm.release()
	waitForState(t, o, models.SummaryStateReady)

	// Same count, same language: nothing happens
	o.Observe(testSources(2), "en")
	o.Wait()

	llm.mu.Lock()
	calls := llm.calls
	llm.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestLanguageChangeRegenerates(t *testing.T) {
	llm := newGatedLLM()
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(2), "en")
	llm.release()
	waitForState(t, o, models.SummaryStateReady)

	o.Observe(testSources(2), "fr")
	state, _, _ := o.Snapshot()
	assert.Equal(t, models.SummaryStateLoading, state)

	llm.release()
	waitForState(t, o, models.SummaryStateReady)

	_, summary, _ := o.Snapshot()
	require.NotNil(t, summary)
	assert.Contains(t, summary.GlobalOverview, "fr")
}

func TestGenerationFailureReturnsToIdleWithoutRetry(t *testing.T) {
	llm := newGatedLLM()
	llm.lastErr = errors.New("provider down")
	o := newTestOrchestrator(llm)
	defer o.Close()

	o.Observe(testSources(1), "en")
	llm.release()
	o.Wait()

	state, summary, err := o.Snapshot()
	assert.Equal(t, models.SummaryStateIdle, state)
	assert.Nil(t, summary)
	assert.Error(t, err)

	llm.mu.Lock()
	calls := llm.calls
	llm.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestNilLLMStaysIdle(t *testing.T) {
	logger := common.GetLogger()
	o := NewOrchestrator(nil, events.NewService(logger), logger)
	defer o.Close()

	o.Observe(testSources(2), "en")

	state, summary, err := o.Snapshot()
	assert.Equal(t, models.SummaryStateIdle, state)
	assert.Nil(t, summary)
	assert.NoError(t, err)
}
