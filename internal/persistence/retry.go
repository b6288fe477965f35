package persistence

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

const defaultRetries = 2

// retrying retries writes and deletes of a remote backend with exponential
// backoff. Reads are passed through.
type retrying struct {
	Adapter
	maxRetries uint64
	logger     *logger.Logger
}

// WithRetry wraps a so that mutating calls are retried up to maxRetries
// times. Each failed attempt is logged at warn level; log may be nil.
func WithRetry(a Adapter, maxRetries uint64, log *logger.Logger) Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &retrying{Adapter: a, maxRetries: maxRetries, logger: log}
}

func (r *retrying) retry(ctx context.Context, op, id string, fn func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	return backoff.RetryNotify(fn, policy, func(err error, wait time.Duration) {
		r.logger.Warn("persistence call failed, retrying",
			zap.String("backend", r.Name()),
			zap.String("op", op),
			zap.String("id", id),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	})
}

func (r *retrying) SaveThread(ctx context.Context, thread *model.Thread) error {
	return r.retry(ctx, "save_thread", thread.ThreadID, func() error {
		return r.Adapter.SaveThread(ctx, thread)
	})
}

func (r *retrying) SaveFeedback(ctx context.Context, feedback *model.Feedback) error {
	return r.retry(ctx, "save_feedback", feedback.FeedbackID, func() error {
		return r.Adapter.SaveFeedback(ctx, feedback)
	})
}

func (r *retrying) DeleteThread(ctx context.Context, threadID string) (bool, error) {
	var deleted bool
	err := r.retry(ctx, "delete_thread", threadID, func() error {
		var err error
		deleted, err = r.Adapter.DeleteThread(ctx, threadID)
		return err
	})
	return deleted, err
}

func (r *retrying) DeleteFeedback(ctx context.Context, feedbackID string) (bool, error) {
	var deleted bool
	err := r.retry(ctx, "delete_feedback", feedbackID, func() error {
		var err error
		deleted, err = r.Adapter.DeleteFeedback(ctx, feedbackID)
		return err
	})
	return deleted, err
}
