// Package model defines data structures for the mock thread API.
package model

import (
	"time"
)

// Thread is an ordered conversation between a user and the mock assistant.
type Thread struct {
	ID        int64     `json:"id"`
	ThreadID  string    `json:"thread_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// Clone returns a copy with its own entry slice.
func (t *Thread) Clone() *Thread {
	out := *t
	out.Entries = append(make([]Entry, 0, len(t.Entries)), t.Entries...)
	return &out
}

// Entry looks up an entry of the thread by its entry id.
func (t *Thread) Entry(entryID string) (*Entry, bool) {
	for i := range t.Entries {
		if t.Entries[i].EntryID == entryID {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// History returns the messages of the thread in order.
func (t *Thread) History() []Message {
	out := make([]Message, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Data
	}
	return out
}

// PostThreadRequest is the body of POST /api/threads. Without a thread id a
// new thread is created.
type PostThreadRequest struct {
	ThreadID string  `json:"threadId,omitempty" validate:"omitempty,uuid"`
	UserID   string  `json:"userId" validate:"required"`
	Message  Message `json:"message"`
}

// DeleteResponse is returned by delete endpoints.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
