package common

import (
	"github.com/google/uuid"
)

// NewSourceID generates a unique source ID with the "src_" prefix
func NewSourceID() string {
	return "src_" + uuid.New().String()
}

// NewSessionID generates a unique session ID with the "ses_" prefix
func NewSessionID() string {
	return "ses_" + uuid.New().String()
}

// NewMessageID generates a unique chat message ID with the "msg_" prefix
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// NewToolID generates a unique tool ID with the "tool_" prefix
func NewToolID() string {
	return "tool_" + uuid.New().String()
}
