package model

import (
	"time"
)

// EventType represents the type of thread event.
type EventType string

const (
	EventTypeEntry    EventType = "entry"
	EventTypeFeedback EventType = "feedback"
	EventTypeDeleted  EventType = "deleted"
)

// ThreadEvent is published whenever a thread changes.
type ThreadEvent struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	UserID    string    `json:"user_id,omitempty"`
	Type      EventType `json:"type"`
	Entry     *Entry    `json:"entry,omitempty"`
	Feedback  *Feedback `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the JSON error body returned by every endpoint.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// ReplayCompleteEvent marks the end of an SSE thread replay.
type ReplayCompleteEvent struct {
	ThreadID   string `json:"thread_id"`
	EntryCount int    `json:"entry_count"`
}
