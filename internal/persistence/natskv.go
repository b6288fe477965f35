package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	natsclient "github.com/capitalize-ai/mock-thread-api/internal/nats"
)

const (
	threadsBucket  = "mock_threads"
	feedbackBucket = "mock_feedback"
)

// bucket is the subset of jetstream.KeyValue used here.
type bucket interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// NATSKV stores records in two JetStream key-value buckets keyed by id.
type NATSKV struct {
	threads  bucket
	feedback bucket
}

// NewNATSKV opens or creates the buckets on client.
func NewNATSKV(ctx context.Context, client *natsclient.Client) (*NATSKV, error) {
	threads, err := client.KeyValue(ctx, threadsBucket, "Mock thread snapshots")
	if err != nil {
		return nil, err
	}
	feedback, err := client.KeyValue(ctx, feedbackBucket, "Mock feedback records")
	if err != nil {
		return nil, err
	}
	return newNATSKV(threads, feedback), nil
}

func newNATSKV(threads, feedback bucket) *NATSKV {
	return &NATSKV{threads: threads, feedback: feedback}
}

func (n *NATSKV) Name() string { return "nats" }

func kvPut(ctx context.Context, b bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if _, err := b.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func kvGet(ctx context.Context, b bucket, key string, v any) (bool, error) {
	entry, err := b.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value(), v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

func kvKeys(ctx context.Context, b bucket) ([]string, error) {
	keys, err := b.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func kvDelete(ctx context.Context, b bucket, key string) (bool, error) {
	if _, err := b.Get(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := b.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return true, nil
}

func (n *NATSKV) SaveThread(ctx context.Context, thread *model.Thread) error {
	return kvPut(ctx, n.threads, thread.ThreadID, thread)
}

func (n *NATSKV) LoadThread(ctx context.Context, threadID string) (*model.Thread, error) {
	var t model.Thread
	ok, err := kvGet(ctx, n.threads, threadID, &t)
	if !ok || err != nil {
		return nil, err
	}
	return &t, nil
}

func (n *NATSKV) LoadAllThreads(ctx context.Context) ([]*model.Thread, error) {
	keys, err := kvKeys(ctx, n.threads)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Thread, 0, len(keys))
	for _, key := range keys {
		t, err := n.LoadThread(ctx, key)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, t)
		}
	}
	sortThreadsNewestFirst(out)
	return out, nil
}

func (n *NATSKV) DeleteThread(ctx context.Context, threadID string) (bool, error) {
	return kvDelete(ctx, n.threads, threadID)
}

func (n *NATSKV) SaveFeedback(ctx context.Context, feedback *model.Feedback) error {
	return kvPut(ctx, n.feedback, feedback.FeedbackID, feedback)
}

func (n *NATSKV) LoadFeedback(ctx context.Context, feedbackID string) (*model.Feedback, error) {
	var fb model.Feedback
	ok, err := kvGet(ctx, n.feedback, feedbackID, &fb)
	if !ok || err != nil {
		return nil, err
	}
	return &fb, nil
}

func (n *NATSKV) LoadAllFeedback(ctx context.Context) ([]*model.Feedback, error) {
	keys, err := kvKeys(ctx, n.feedback)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Feedback, 0, len(keys))
	for _, key := range keys {
		fb, err := n.LoadFeedback(ctx, key)
		if err != nil {
			return nil, err
		}
		if fb != nil {
			out = append(out, fb)
		}
	}
	sortFeedbackNewestFirst(out)
	return out, nil
}

func (n *NATSKV) DeleteFeedback(ctx context.Context, feedbackID string) (bool, error) {
	return kvDelete(ctx, n.feedback, feedbackID)
}

// Close is a no-op; the connection belongs to the NATS client.
func (n *NATSKV) Close() error { return nil }
