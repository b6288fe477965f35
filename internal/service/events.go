package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// EventPublisher receives thread events. A nil publisher disables events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *model.ThreadEvent) (uint64, error)
}

// EventReader reads back published events of a thread.
type EventReader interface {
	GetEvents(ctx context.Context, threadID string, afterSequence uint64, limit int) ([]model.ThreadEvent, uint64, bool, error)
}

// publish sends an event and logs failures. Events are best effort.
func publish(ctx context.Context, p EventPublisher, log *logger.Logger, event *model.ThreadEvent) {
	if p == nil {
		return
	}
	event.ID = uuid.NewString()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if _, err := p.PublishEvent(ctx, event); err != nil {
		log.Warn("failed to publish thread event",
			zap.String("thread_id", event.ThreadID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
