package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/metrics"
)

const (
	// StreamName is the name of the thread events stream.
	StreamName = "MOCK_THREADS"

	// SubjectPrefix is the prefix for all thread subjects.
	SubjectPrefix = "threads"
)

// StreamManager publishes and replays thread events on JetStream.
type StreamManager struct {
	js jetstream.JetStream
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{js: client.JetStream()}
}

// EnsureStream creates the thread events stream when it is missing.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	_, err := m.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = m.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Mock thread entries, feedback and deletions",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject an event is published on.
func EventSubject(event *model.ThreadEvent) string {
	switch event.Type {
	case model.EventTypeEntry:
		category := model.CategoryRequest
		if event.Entry != nil {
			category = event.Entry.Category
		}
		return fmt.Sprintf("%s.%s.entry.%s", SubjectPrefix, event.ThreadID, category)
	default:
		return fmt.Sprintf("%s.%s.%s", SubjectPrefix, event.ThreadID, event.Type)
	}
}

// ThreadFilter returns the filter subject for every event of a thread.
func ThreadFilter(threadID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, threadID)
}

// PublishEvent publishes a thread event to JetStream.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.ThreadEvent) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.js.Publish(ctx, EventSubject(event), data)
	if err != nil {
		metrics.RecordPublish(string(event.Type), "error")
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}
	metrics.RecordPublish(string(event.Type), "ok")

	return ack.Sequence, nil
}

// GetEvents reads up to limit events of a thread published after the given
// stream sequence. It returns the events, the last sequence read and whether
// more may be available.
func (m *StreamManager) GetEvents(ctx context.Context, threadID string, afterSequence uint64, limit int) ([]model.ThreadEvent, uint64, bool, error) {
	cfg := jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{ThreadFilter(threadID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		cfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		cfg.OptStartSeq = afterSequence + 1
	}

	consumer, err := m.js.OrderedConsumer(ctx, StreamName, cfg)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch events: %w", err)
	}

	events := make([]model.ThreadEvent, 0, limit)
	var last uint64
	for msg := range batch.Messages() {
		var event model.ThreadEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			continue
		}
		if meta, err := msg.Metadata(); err == nil {
			last = meta.Sequence.Stream
		}
		events = append(events, event)
	}

	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, 0, false, fmt.Errorf("batch error: %w", err)
	}

	return events, last, len(events) == limit, nil
}
