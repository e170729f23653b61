package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/app"
	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/handlers"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
	"github.com/fablabhq/fablab/internal/services/previews"
	"github.com/fablabhq/fablab/internal/services/tools"
)

type memToolStorage struct {
	mu    sync.Mutex
	tools map[string]models.Tool
}

func (m *memToolStorage) CreateTool(tool *models.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool.ID] = *tool
	return nil
}

func (m *memToolStorage) ListTools(ownerID string) ([]*models.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Tool
	for _, tool := range m.tools {
		if tool.OwnerID == ownerID {
			t := tool
			out = append(out, &t)
		}
	}
	return out, nil
}

func (m *memToolStorage) GetTool(id string) (*models.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tool, ok := m.tools[id]
	if !ok {
		return nil, interfaces.ErrToolNotFound
	}
	return &tool, nil
}

func (m *memToolStorage) UpdateTool(tool *models.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool.ID] = *tool
	return nil
}

func (m *memToolStorage) DeleteTool(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tools, id)
	return nil
}

// newRoutesMux builds the route table with only the handlers the test
// exercises wired up.
func newRoutesMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := common.GetLogger()

	previewStore, err := previews.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	toolService := tools.NewService(&memToolStorage{tools: make(map[string]models.Tool)}, logger)

	s := &Server{app: &app.App{
		Logger:   logger,
		Previews: previewStore,
		Handlers: &app.Handlers{
			Tools: handlers.NewToolsHandler(toolService, logger),
		},
	}}
	return s.setupRoutes()
}

func TestToolUpdateRoutedViaPatchAndPut(t *testing.T) {
	mux := newRoutesMux(t)

	payload := `{"type":"notebook","title":"Notebook","description":"routing test","category":"general"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/tools", strings.NewReader(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Partial updates are accepted through both methods
	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		r = httptest.NewRequest(method, "/api/v1/tools/"+created.ID, strings.NewReader(`{"title":"Renamed"}`))
		w = httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code, "method %s: %s", method, w.Body.String())

		var updated models.Tool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Renamed", updated.Title)
	}
}
