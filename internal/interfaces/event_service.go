package interfaces

// EventType identifies the kind of event published on the internal bus
type EventType string

const (
	EventSourceCreated   EventType = "source_created"
	EventSourceDeleted   EventType = "source_deleted"
	EventSourceToggled   EventType = "source_toggled"
	EventSummaryReady    EventType = "summary_ready"
	EventSummaryCleared  EventType = "summary_cleared"
	EventSessionCreated  EventType = "session_created"
	EventSessionDisposed EventType = "session_disposed"
)

// Event is a notification published on the internal event bus
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventHandler processes a published event
type EventHandler func(event Event)

// EventService is a simple publish/subscribe bus for internal notifications
type EventService interface {
	// Subscribe registers a handler for the given event type and returns an
	// unsubscribe function
	Subscribe(eventType EventType, handler EventHandler) func()

	// Publish delivers an event to all subscribed handlers
	Publish(event Event)

	// Close stops delivery and releases resources
	Close() error
}
