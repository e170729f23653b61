package badger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(&common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	}, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestSourceStorageRoundTrip(t *testing.T) {
	storage := newTestManager(t).SourceStorage()

	source := &models.APISource{
		SessionID: "ses_1",
		Name:      "notes.txt",
		Type:      "TEXT",
		Content:   "hello",
	}
	require.NoError(t, storage.CreateSource(source))
	assert.NotEmpty(t, source.ID)
	assert.False(t, source.CreatedAt.IsZero())

	got, err := storage.GetSource(source.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.Name)
	assert.Equal(t, "ses_1", got.SessionID)
}

func TestListSourcesFiltersBySessionInOrder(t *testing.T) {
	storage := newTestManager(t).SourceStorage()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, storage.CreateSource(&models.APISource{
			SessionID: "ses_1",
			Name:      name,
			Type:      "TEXT",
		}))
	}
	require.NoError(t, storage.CreateSource(&models.APISource{
		SessionID: "ses_other",
		Name:      "elsewhere",
		Type:      "TEXT",
	}))

	list, err := storage.ListSources("ses_1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, "c", list[2].Name)
}

func TestDeleteSource(t *testing.T) {
	storage := newTestManager(t).SourceStorage()

	source := &models.APISource{SessionID: "ses_1", Name: "x", Type: "TEXT"}
	require.NoError(t, storage.CreateSource(source))

	require.NoError(t, storage.DeleteSource(source.ID))

	_, err := storage.GetSource(source.ID)
	assert.ErrorIs(t, err, interfaces.ErrSourceNotFound)

	assert.ErrorIs(t, storage.DeleteSource(source.ID), interfaces.ErrSourceNotFound)
}

func TestDeleteSessionSources(t *testing.T) {
	storage := newTestManager(t).SourceStorage()

	require.NoError(t, storage.CreateSource(&models.APISource{SessionID: "ses_1", Name: "a", Type: "TEXT"}))
	require.NoError(t, storage.CreateSource(&models.APISource{SessionID: "ses_1", Name: "b", Type: "TEXT"}))
	keep := &models.APISource{SessionID: "ses_2", Name: "keep", Type: "TEXT"}
	require.NoError(t, storage.CreateSource(keep))

	require.NoError(t, storage.DeleteSessionSources("ses_1"))

	list, err := storage.ListSources("ses_1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = storage.GetSource(keep.ID)
	assert.NoError(t, err)
}

func TestToolStorageRoundTrip(t *testing.T) {
	storage := newTestManager(t).ToolStorage()

	tool := &models.Tool{
		ID:          "tool_1",
		OwnerID:     "alice",
		Type:        models.ToolTypeNotebook,
		Title:       "Notebook",
		Description: "research notes",
		Category:    "general",
	}
	require.NoError(t, storage.CreateTool(tool))

	got, err := storage.GetTool("tool_1")
	require.NoError(t, err)
	assert.Equal(t, "Notebook", got.Title)

	got.Title = "Renamed"
	require.NoError(t, storage.UpdateTool(got))

	got, err = storage.GetTool("tool_1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	list, err := storage.ListTools("alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, storage.DeleteTool("tool_1"))
	_, err = storage.GetTool("tool_1")
	assert.ErrorIs(t, err, interfaces.ErrToolNotFound)
}
