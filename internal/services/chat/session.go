package chat

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// errorReply is appended as the model turn when a request fails, keeping
// the conversation intact instead of surfacing a transport error.
const errorReply = "Sorry, I could not process that request. Please try again."

// Session holds the append-only chat history for one notebook session.
// The user message is committed to history before the provider call, so a
// failed request never loses the user's turn.
type Session struct {
	llm     interfaces.LLMService
	logger  arbor.ILogger
	history []*models.ChatMessage
	mu      sync.Mutex
}

// NewSession creates a chat session. A nil LLM service is tolerated; every
// send then yields the error reply.
func NewSession(llm interfaces.LLMService, logger arbor.ILogger) *Session {
	return &Session{
		llm:     llm,
		logger:  logger,
		history: make([]*models.ChatMessage, 0),
	}
}

// Send appends the user message, asks the provider for a grounded reply and
// appends it. Provider failures produce an in-line error reply rather than
// an error return.
func (s *Session) Send(ctx context.Context, message string, sources []*models.Source, language string) *models.ChatMessage {
	userMsg := &models.ChatMessage{
		ID:        common.NewMessageID(),
		Role:      models.ChatRoleUser,
		Content:   message,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	// Snapshot history before this turn so the provider sees prior context
	// without the message it is answering.
	prior := make([]*models.ChatMessage, len(s.history))
	copy(prior, s.history)
	s.history = append(s.history, userMsg)
	s.mu.Unlock()

	content := errorReply
	if s.llm == nil {
		s.logger.Warn().Msg("No LLM service configured for chat")
	} else {
		reply, err := s.llm.Chat(ctx, prior, sources, message, language)
		if err != nil {
			s.logger.Error().Err(err).Msg("Chat request failed")
		} else {
			content = reply
		}
	}

	modelMsg := &models.ChatMessage{
		ID:        common.NewMessageID(),
		Role:      models.ChatRoleModel,
		Content:   content,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.history = append(s.history, modelMsg)
	s.mu.Unlock()

	return modelMsg
}

// History returns a snapshot of the conversation in order.
func (s *Session) History() []*models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of messages in the history.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
