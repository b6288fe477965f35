package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/persistence"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
	"github.com/capitalize-ai/mock-thread-api/pkg/metrics"
)

// FeedbackService handles ratings on thread entries.
type FeedbackService struct {
	store     *store.Store
	persist   persistence.Adapter
	publisher EventPublisher
	logger    *logger.Logger
}

// NewFeedbackService creates a new feedback service. publisher may be nil.
func NewFeedbackService(st *store.Store, persist persistence.Adapter, publisher EventPublisher, log *logger.Logger) *FeedbackService {
	if persist == nil {
		persist = persistence.Noop{}
	}
	return &FeedbackService{
		store:     st,
		persist:   persist,
		publisher: publisher,
		logger:    log,
	}
}

// Create records feedback after checking that the thread and entry exist.
func (s *FeedbackService) Create(ctx context.Context, req *model.CreateFeedbackRequest) (*model.Feedback, error) {
	thread, ok := s.store.Snapshot(req.ThreadID)
	if !ok {
		return nil, ErrThreadNotFound
	}
	if _, ok := thread.Entry(req.EntryID); !ok {
		return nil, ErrEntryNotFound
	}

	fb := s.store.CreateFeedback(req.EntryID, req.ThreadID, req.UserID, req.Rating, req.Comment)
	metrics.RecordFeedback(string(fb.Rating))

	if err := s.persist.SaveFeedback(ctx, fb); err != nil {
		metrics.RecordPersistenceError(s.persist.Name(), "save_feedback")
		s.logger.Warn("failed to persist feedback",
			zap.String("feedback_id", fb.FeedbackID),
			zap.Error(err),
		)
	}
	publish(ctx, s.publisher, s.logger, &model.ThreadEvent{
		ThreadID:  fb.ThreadID,
		UserID:    fb.UserID,
		Type:      model.EventTypeFeedback,
		Feedback:  fb,
		CreatedAt: fb.CreatedAt,
	})

	s.logger.Info("feedback created",
		zap.String("feedback_id", fb.FeedbackID),
		zap.String("thread_id", fb.ThreadID),
		zap.String("rating", string(fb.Rating)),
	)
	return fb, nil
}

// Get returns feedback by id.
func (s *FeedbackService) Get(ctx context.Context, feedbackID string) (*model.Feedback, error) {
	fb, ok := s.store.GetFeedback(feedbackID)
	if !ok {
		return nil, ErrFeedbackNotFound
	}
	return fb, nil
}

// ListByEntry returns feedback for an entry.
func (s *FeedbackService) ListByEntry(ctx context.Context, entryID string) []*model.Feedback {
	return s.store.GetFeedbackByEntry(entryID)
}

// ListByThread returns feedback for a thread.
func (s *FeedbackService) ListByThread(ctx context.Context, threadID string) []*model.Feedback {
	return s.store.GetFeedbackByThread(threadID)
}

// List returns all feedback.
func (s *FeedbackService) List(ctx context.Context) []*model.Feedback {
	return s.store.ListFeedback()
}

// Delete removes feedback.
func (s *FeedbackService) Delete(ctx context.Context, feedbackID string) error {
	if !s.store.DeleteFeedback(feedbackID) {
		return ErrFeedbackNotFound
	}
	if _, err := s.persist.DeleteFeedback(ctx, feedbackID); err != nil {
		metrics.RecordPersistenceError(s.persist.Name(), "delete_feedback")
		s.logger.Warn("failed to delete persisted feedback",
			zap.String("feedback_id", feedbackID),
			zap.Error(err),
		)
	}
	return nil
}

// Counts tallies all feedback.
func (s *FeedbackService) Counts(ctx context.Context) model.FeedbackCounts {
	return s.store.FeedbackCounts("")
}

// ThreadCounts tallies feedback of one thread.
func (s *FeedbackService) ThreadCounts(ctx context.Context, threadID string) model.FeedbackCounts {
	return s.store.FeedbackCounts(threadID)
}
