package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/analytics"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/persistence"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/delay"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
	"github.com/capitalize-ai/mock-thread-api/pkg/metrics"
)

var tracer = otel.Tracer("github.com/capitalize-ai/mock-thread-api/internal/service")

// Sleeper waits for d or until ctx is done.
type Sleeper = delay.Func

// ThreadOption configures a ThreadService.
type ThreadOption func(*ThreadService)

// WithSleeper replaces the delay implementation.
func WithSleeper(fn Sleeper) ThreadOption {
	return func(s *ThreadService) {
		s.sleep = fn
	}
}

// WithPublisher enables thread events.
func WithPublisher(p EventPublisher) ThreadOption {
	return func(s *ThreadService) {
		s.publisher = p
	}
}

// PostThreadInput is a user message for a new or existing thread.
type PostThreadInput struct {
	ThreadID string
	UserID   string
	Message  model.Message
}

// ThreadService records user messages and produces simulated replies.
type ThreadService struct {
	store     *store.Store
	generator *responder.Generator
	tracker   *analytics.Tracker
	persist   persistence.Adapter
	publisher EventPublisher
	sleep     Sleeper
	logger    *logger.Logger
}

// NewThreadService creates a new thread service.
func NewThreadService(
	st *store.Store,
	generator *responder.Generator,
	tracker *analytics.Tracker,
	persist persistence.Adapter,
	log *logger.Logger,
	opts ...ThreadOption,
) *ThreadService {
	if persist == nil {
		persist = persistence.Noop{}
	}
	s := &ThreadService{
		store:     st,
		generator: generator,
		tracker:   tracker,
		persist:   persist,
		sleep:     delay.Sleep,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post appends the message to in.ThreadID, or starts a thread when it is
// empty, then waits the simulated delay and appends the assistant reply.
// If ctx ends during the delay the user entry stays and no reply is added.
func (s *ThreadService) Post(ctx context.Context, in PostThreadInput) (*model.Thread, error) {
	ctx, span := tracer.Start(ctx, "ThreadService.Post")
	defer span.End()

	snap, created, ok := s.store.AddRequest(in.ThreadID, in.UserID, in.Message)
	if !ok {
		span.SetStatus(codes.Error, ErrThreadNotFound.Error())
		return nil, ErrThreadNotFound
	}
	if created {
		metrics.RecordThread()
	}
	metrics.RecordEntry(string(model.CategoryRequest))

	threadID := snap.ThreadID
	request := snap.Entries[len(snap.Entries)-1]
	span.SetAttributes(
		attribute.String("thread.id", threadID),
		attribute.Int("thread.length", len(snap.Entries)),
	)
	publish(ctx, s.publisher, s.logger, &model.ThreadEvent{
		ThreadID:  threadID,
		UserID:    snap.UserID,
		Type:      model.EventTypeEntry,
		Entry:     &request,
		CreatedAt: request.CreatedAt,
	})

	resp := s.generator.CreateAssistantResponse(in.Message, threadID, snap.History())
	resp.DelayMs = s.clampDelay(resp.DelayMs)
	span.SetAttributes(
		attribute.String("mock.mode", string(resp.Mode)),
		attribute.Int("mock.delay_ms", resp.DelayMs),
	)

	if err := s.sleep(ctx, time.Duration(resp.DelayMs)*time.Millisecond); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply cancelled")
		s.saveThread(context.WithoutCancel(ctx), threadID)
		return nil, err
	}

	entry, ok := s.store.AppendResponse(threadID, model.Message{
		Role:    model.RoleAssistant,
		Content: resp.Content,
	})
	if !ok {
		// deleted while the reply was pending
		return nil, ErrThreadNotFound
	}
	metrics.RecordEntry(string(model.CategoryResponse))
	s.tracker.Track(resp)

	s.saveThread(ctx, threadID)
	publish(ctx, s.publisher, s.logger, &model.ThreadEvent{
		ThreadID:  threadID,
		UserID:    snap.UserID,
		Type:      model.EventTypeEntry,
		Entry:     entry,
		CreatedAt: entry.CreatedAt,
	})

	s.logger.Debug("assistant reply appended",
		zap.String("thread_id", threadID),
		zap.String("entry_id", entry.EntryID),
		zap.String("mode", string(resp.Mode)),
		zap.Int("delay_ms", resp.DelayMs),
	)

	out, ok := s.store.Snapshot(threadID)
	if !ok {
		return nil, ErrThreadNotFound
	}
	return out, nil
}

func (s *ThreadService) clampDelay(ms int) int {
	maxMs := s.generator.Options().MaxDelayMs
	if ms > maxMs {
		return maxMs
	}
	if ms < 0 {
		return 0
	}
	return ms
}

func (s *ThreadService) saveThread(ctx context.Context, threadID string) {
	snap, ok := s.store.Snapshot(threadID)
	if !ok {
		return
	}
	if err := s.persist.SaveThread(ctx, snap); err != nil {
		metrics.RecordPersistenceError(s.persist.Name(), "save_thread")
		s.logger.Warn("failed to persist thread",
			zap.String("thread_id", threadID),
			zap.String("backend", s.persist.Name()),
			zap.Error(err),
		)
	}
}

// Get returns a copy of a thread.
func (s *ThreadService) Get(ctx context.Context, threadID string) (*model.Thread, error) {
	t, ok := s.store.Snapshot(threadID)
	if !ok {
		return nil, ErrThreadNotFound
	}
	return t, nil
}

// List returns copies of all threads in creation order.
func (s *ThreadService) List(ctx context.Context) []*model.Thread {
	return s.store.ListThreads()
}

// Delete removes a thread and its snapshot.
func (s *ThreadService) Delete(ctx context.Context, threadID string) error {
	t, ok := s.store.Snapshot(threadID)
	if !ok || !s.store.DeleteThread(threadID) {
		return ErrThreadNotFound
	}

	if _, err := s.persist.DeleteThread(ctx, threadID); err != nil {
		metrics.RecordPersistenceError(s.persist.Name(), "delete_thread")
		s.logger.Warn("failed to delete persisted thread",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
	}
	publish(ctx, s.publisher, s.logger, &model.ThreadEvent{
		ThreadID: threadID,
		UserID:   t.UserID,
		Type:     model.EventTypeDeleted,
	})

	s.logger.Info("thread deleted", zap.String("thread_id", threadID))
	return nil
}

// Events replays published thread events. It needs a publisher that can
// read its stream back.
func (s *ThreadService) Events(ctx context.Context, threadID string, afterSequence uint64, limit int) ([]model.ThreadEvent, uint64, bool, error) {
	r, ok := s.publisher.(EventReader)
	if !ok {
		return nil, 0, false, ErrEventsDisabled
	}
	return r.GetEvents(ctx, threadID, afterSequence, limit)
}
