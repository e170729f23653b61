package events

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
)

type subscription struct {
	id      int
	handler interfaces.EventHandler
}

// Service implements EventService with an in-process pub/sub pattern
type Service struct {
	subscribers map[interfaces.EventType][]subscription
	nextID      int
	closed      bool
	mu          sync.RWMutex
	logger      arbor.ILogger
}

// NewService creates a new event service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		subscribers: make(map[interfaces.EventType][]subscription),
		logger:      logger,
	}
}

// Subscribe registers a handler for an event type and returns an
// unsubscribe function.
func (s *Service) Subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers[eventType] = append(s.subscribers[eventType], subscription{id: id, handler: handler})
	count := len(s.subscribers[eventType])
	s.mu.Unlock()

	s.logger.Debug().
		Str("event_type", string(eventType)).
		Int("subscriber_count", count).
		Msg("Event handler subscribed")

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		subs := s.subscribers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				s.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to all subscribed handlers synchronously in
// registration order. Handlers must not block.
func (s *Service) Publish(event interfaces.Event) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	subs := make([]subscription, len(s.subscribers[event.Type]))
	copy(subs, s.subscribers[event.Type])
	s.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	s.logger.Debug().
		Str("event_type", string(event.Type)).
		Int("subscriber_count", len(subs)).
		Msg("Publishing event")

	for _, sub := range subs {
		sub.handler(event)
	}
}

// Close stops delivery and drops all subscriptions
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.subscribers = make(map[interfaces.EventType][]subscription)
	s.logger.Info().Msg("Event service closed")

	return nil
}
