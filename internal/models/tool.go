package models

import "time"

// ToolType discriminates the kinds of tool records.
type ToolType string

const (
	ToolTypeAssistant ToolType = "assistant"
	ToolTypePrompt    ToolType = "prompt"
	ToolTypeNotebook  ToolType = "notebook"
	ToolTypeProject   ToolType = "project"
)

// Tool is a user-created artifact (assistant, prompt, notebook or project).
// Instructions is only meaningful for assistants, PromptText only for
// prompts; the service rejects mismatched fields.
type Tool struct {
	ID              string    `json:"id" badgerhold:"key"`
	OwnerID         string    `json:"owner_id" validate:"required"`
	Type            ToolType  `json:"type" validate:"required,oneof=assistant prompt notebook project"`
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	Category        string    `json:"category" validate:"required"`
	Instructions    string    `json:"instructions,omitempty"`
	PromptText      string    `json:"prompt_text,omitempty"`
	HasPublicStatus bool      `json:"has_public_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToolUpdate carries partial updates for a tool. Nil fields are left
// unchanged.
type ToolUpdate struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Category        *string `json:"category,omitempty"`
	Instructions    *string `json:"instructions,omitempty"`
	PromptText      *string `json:"prompt_text,omitempty"`
	HasPublicStatus *bool   `json:"has_public_status,omitempty"`
}
