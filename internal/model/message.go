package model

import (
	"encoding/json"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Content is the structured payload of a message.
//
// Visual and Sources distinguish absent (nil) from empty: an empty map or
// slice is serialized as {} or [] while nil is omitted.
type Content struct {
	Text    string         `json:"text,omitempty"`
	Visual  map[string]any `json:"visual,omitempty"`
	Sources []string       `json:"sources,omitempty"`
}

// MarshalJSON keeps explicitly empty visual and sources on the wire.
func (c Content) MarshalJSON() ([]byte, error) {
	type wire struct {
		Text    string          `json:"text,omitempty"`
		Visual  *map[string]any `json:"visual,omitempty"`
		Sources *[]string       `json:"sources,omitempty"`
	}
	w := wire{Text: c.Text}
	if c.Visual != nil {
		w.Visual = &c.Visual
	}
	if c.Sources != nil {
		w.Sources = &c.Sources
	}
	return json.Marshal(w)
}

// Clone returns a deep copy. Nested maps and slices inside Visual are
// copied as well, so the result shares no mutable state with c.
func (c Content) Clone() Content {
	out := Content{Text: c.Text}
	if c.Visual != nil {
		out.Visual = cloneMap(c.Visual)
	}
	if c.Sources != nil {
		out.Sources = append([]string{}, c.Sources...)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string{}, v...)
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}

// HasVisual reports whether the content carries a non-empty visual payload.
func (c Content) HasVisual() bool {
	return len(c.Visual) > 0
}

// Message is a single user, assistant or system utterance.
type Message struct {
	Role    Role    `json:"role" validate:"required,oneof=user assistant system"`
	Content Content `json:"content"`
}

// Category distinguishes inbound entries from generated ones.
type Category string

const (
	CategoryRequest  Category = "request"
	CategoryResponse Category = "response"
)

// Entry is one message inside a thread. Entries are never mutated.
type Entry struct {
	ID        int64     `json:"id"`
	EntryID   string    `json:"entry_id"`
	ThreadID  string    `json:"thread_id"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	Data      Message   `json:"data"`
}

// Mode is the response generation policy.
type Mode string

const (
	ModeSmart  Mode = "smart"
	ModeEcho   Mode = "echo"
	ModeRandom Mode = "random"
)

// GeneratedResponse is a simulated assistant reply before it is stored.
type GeneratedResponse struct {
	Content Content `json:"content"`
	DelayMs int     `json:"delayMs"`
	Mode    Mode    `json:"mode"`
}
