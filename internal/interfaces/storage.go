package interfaces

import (
	"errors"

	"github.com/fablabhq/fablab/internal/models"
)

var (
	// ErrSourceNotFound is returned when a source ID does not exist
	ErrSourceNotFound = errors.New("source not found")

	// ErrToolNotFound is returned when a tool ID does not exist
	ErrToolNotFound = errors.New("tool not found")
)

// SourceStorage persists backend source records
type SourceStorage interface {
	// CreateSource stores a new source and assigns its ID
	CreateSource(source *models.APISource) error

	// ListSources returns all sources for a session ordered by creation time
	ListSources(sessionID string) ([]*models.APISource, error)

	// GetSource retrieves a source by ID
	GetSource(id string) (*models.APISource, error)

	// DeleteSource removes a source by ID
	DeleteSource(id string) error

	// DeleteSessionSources removes all sources belonging to a session
	DeleteSessionSources(sessionID string) error
}

// ToolStorage persists tool records
type ToolStorage interface {
	// CreateTool stores a new tool and assigns its ID
	CreateTool(tool *models.Tool) error

	// ListTools returns all tools owned by the given user
	ListTools(ownerID string) ([]*models.Tool, error)

	// GetTool retrieves a tool by ID
	GetTool(id string) (*models.Tool, error)

	// UpdateTool replaces a stored tool
	UpdateTool(tool *models.Tool) error

	// DeleteTool removes a tool by ID
	DeleteTool(id string) error
}

// StorageManager provides access to all storage backends
type StorageManager interface {
	SourceStorage() SourceStorage
	ToolStorage() ToolStorage
	Close() error
}
