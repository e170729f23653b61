package tools

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

var (
	// ErrToolNotPublic is returned when a tool exists but has not been
	// shared publicly
	ErrToolNotPublic = errors.New("tool is not public")

	// ErrNotOwner is returned when a caller operates on a tool owned by
	// someone else
	ErrNotOwner = errors.New("tool is owned by another user")
)

// Service manages tool records (assistants, prompts, notebooks, projects).
// Field use is gated by type: instructions belong to assistants, prompt text
// to prompts.
type Service struct {
	storage  interfaces.ToolStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a tool service
func NewService(storage interfaces.ToolStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create validates and stores a new tool. The ID and timestamps are
// assigned here.
func (s *Service) Create(tool *models.Tool) (*models.Tool, error) {
	if err := s.validate.Struct(tool); err != nil {
		return nil, fmt.Errorf("invalid tool: %w", err)
	}
	if err := checkTypeFields(tool.Type, tool.Instructions, tool.PromptText); err != nil {
		return nil, err
	}

	tool.ID = common.NewToolID()
	now := time.Now()
	tool.CreatedAt = now
	tool.UpdatedAt = now

	if err := s.storage.CreateTool(tool); err != nil {
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}

	s.logger.Info().
		Str("tool_id", tool.ID).
		Str("type", string(tool.Type)).
		Str("owner_id", tool.OwnerID).
		Msg("Tool created")

	return tool, nil
}

// List returns all tools owned by the given user.
func (s *Service) List(ownerID string) ([]*models.Tool, error) {
	return s.storage.ListTools(ownerID)
}

// Get returns a tool owned by the caller.
func (s *Service) Get(id, ownerID string) (*models.Tool, error) {
	tool, err := s.storage.GetTool(id)
	if err != nil {
		return nil, err
	}
	if tool.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return tool, nil
}

// GetPublic returns a tool regardless of owner, but only when it has been
// shared publicly.
func (s *Service) GetPublic(id string) (*models.Tool, error) {
	tool, err := s.storage.GetTool(id)
	if err != nil {
		return nil, err
	}
	if !tool.HasPublicStatus {
		return nil, ErrToolNotPublic
	}
	return tool, nil
}

// Update applies a partial update to a tool owned by the caller.
func (s *Service) Update(id, ownerID string, update *models.ToolUpdate) (*models.Tool, error) {
	tool, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		tool.Title = *update.Title
	}
	if update.Description != nil {
		tool.Description = *update.Description
	}
	if update.Category != nil {
		tool.Category = *update.Category
	}
	if update.Instructions != nil {
		tool.Instructions = *update.Instructions
	}
	if update.PromptText != nil {
		tool.PromptText = *update.PromptText
	}
	if update.HasPublicStatus != nil {
		tool.HasPublicStatus = *update.HasPublicStatus
	}

	if err := s.validate.Struct(tool); err != nil {
		return nil, fmt.Errorf("invalid tool: %w", err)
	}
	if err := checkTypeFields(tool.Type, tool.Instructions, tool.PromptText); err != nil {
		return nil, err
	}

	tool.UpdatedAt = time.Now()

	if err := s.storage.UpdateTool(tool); err != nil {
		return nil, fmt.Errorf("failed to update tool: %w", err)
	}

	s.logger.Info().
		Str("tool_id", tool.ID).
		Msg("Tool updated")

	return tool, nil
}

// Delete removes a tool owned by the caller.
func (s *Service) Delete(id, ownerID string) error {
	if _, err := s.Get(id, ownerID); err != nil {
		return err
	}
	if err := s.storage.DeleteTool(id); err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	s.logger.Info().
		Str("tool_id", id).
		Msg("Tool deleted")

	return nil
}

// checkTypeFields enforces the per-type field contract.
func checkTypeFields(toolType models.ToolType, instructions, promptText string) error {
	if instructions != "" && toolType != models.ToolTypeAssistant {
		return fmt.Errorf("instructions are only valid for assistant tools, got type %s", toolType)
	}
	if promptText != "" && toolType != models.ToolTypePrompt {
		return fmt.Errorf("prompt text is only valid for prompt tools, got type %s", toolType)
	}
	return nil
}
