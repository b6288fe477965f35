package model

import (
	"time"
)

// Rating is a thumbs up or thumbs down verdict on an entry.
type Rating string

const (
	RatingThumbsUp   Rating = "thumbs_up"
	RatingThumbsDown Rating = "thumbs_down"
)

// Feedback is a user rating attached to an entry. Immutable once created.
type Feedback struct {
	ID         int64     `json:"id"`
	FeedbackID string    `json:"feedback_id"`
	EntryID    string    `json:"entry_id"`
	ThreadID   string    `json:"thread_id"`
	UserID     string    `json:"user_id"`
	Rating     Rating    `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateFeedbackRequest is the body of POST /api/feedback.
type CreateFeedbackRequest struct {
	EntryID  string  `json:"entryId" validate:"required,uuid"`
	ThreadID string  `json:"threadId" validate:"required,uuid"`
	UserID   string  `json:"userId" validate:"required"`
	Rating   Rating  `json:"rating" validate:"required,oneof=thumbs_up thumbs_down"`
	Comment  *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// FeedbackCounts aggregates ratings. ThreadID is set for per-thread counts.
type FeedbackCounts struct {
	ThreadID   string `json:"thread_id,omitempty"`
	ThumbsUp   int    `json:"thumbs_up"`
	ThumbsDown int    `json:"thumbs_down"`
	Total      int    `json:"total"`
}

// CountFeedback tallies ratings over a feedback list.
func CountFeedback(list []*Feedback) FeedbackCounts {
	var c FeedbackCounts
	for _, f := range list {
		switch f.Rating {
		case RatingThumbsUp:
			c.ThumbsUp++
		case RatingThumbsDown:
			c.ThumbsDown++
		}
	}
	c.Total = len(list)
	return c
}
