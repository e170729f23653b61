package badger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// ToolStorage implements tool persistence on badgerhold
type ToolStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.ToolStorage = (*ToolStorage)(nil)

// NewToolStorage creates a badger-backed tool storage
func NewToolStorage(db *BadgerDB, logger arbor.ILogger) *ToolStorage {
	return &ToolStorage{
		db:     db,
		logger: logger,
	}
}

// CreateTool stores a new tool.
func (s *ToolStorage) CreateTool(tool *models.Tool) error {
	if err := s.db.Store().Insert(tool.ID, tool); err != nil {
		return fmt.Errorf("failed to insert tool: %w", err)
	}
	return nil
}

// ListTools returns all tools owned by the given user, newest first.
func (s *ToolStorage) ListTools(ownerID string) ([]*models.Tool, error) {
	var tools []*models.Tool
	if err := s.db.Store().Find(&tools, badgerhold.Where("OwnerID").Eq(ownerID)); err != nil {
		return nil, fmt.Errorf("failed to find tools: %w", err)
	}

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].CreatedAt.After(tools[j].CreatedAt)
	})

	return tools, nil
}

// GetTool retrieves a tool by ID.
func (s *ToolStorage) GetTool(id string) (*models.Tool, error) {
	var tool models.Tool
	if err := s.db.Store().Get(id, &tool); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrToolNotFound
		}
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	return &tool, nil
}

// UpdateTool replaces a stored tool.
func (s *ToolStorage) UpdateTool(tool *models.Tool) error {
	if err := s.db.Store().Update(tool.ID, tool); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrToolNotFound
		}
		return fmt.Errorf("failed to update tool: %w", err)
	}
	return nil
}

// DeleteTool removes a tool by ID.
func (s *ToolStorage) DeleteTool(id string) error {
	if err := s.db.Store().Delete(id, models.Tool{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrToolNotFound
		}
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	return nil
}
