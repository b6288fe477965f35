package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

const (
	redisThreadKey     = "mock:thread:"
	redisFeedbackKey   = "mock:feedback:"
	redisThreadIndex   = "mock:threads"
	redisFeedbackIndex = "mock:feedback"
)

// Redis stores each record as a JSON string value and tracks ids in a set
// per collection.
type Redis struct {
	client redis.UniversalClient
	logger *logger.Logger
}

// NewRedis wraps an existing client. log may be nil.
func NewRedis(client redis.UniversalClient, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.NewNop()
	}
	return &Redis{client: client, logger: log}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) save(ctx context.Context, key, index, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key+id, data, 0)
		p.SAdd(ctx, index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", id, err)
	}
	return nil
}

func (r *Redis) load(ctx context.Context, key, id string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", id, err)
	}
	return true, nil
}

// loadAll returns the raw documents of every indexed id. Ids whose value has
// vanished are dropped from the index.
func (r *Redis) loadAll(ctx context.Context, key, index string) ([][]byte, error) {
	ids, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", index, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", index, err)
	}

	out := make([][]byte, 0, len(values))
	var stale []any
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, []byte(s))
	}
	if len(stale) > 0 {
		// stale ids are skipped either way; a failed prune is retried on the next load
		if err := r.client.SRem(ctx, index, stale...).Err(); err != nil {
			r.logger.Warn("failed to prune stale index entries",
				zap.String("index", index),
				zap.Int("stale", len(stale)),
				zap.Error(err),
			)
		}
	}
	return out, nil
}

func (r *Redis) remove(ctx context.Context, key, index, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, key+id)
		p.SRem(ctx, index, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return del.Val() > 0, nil
}

func (r *Redis) SaveThread(ctx context.Context, thread *model.Thread) error {
	return r.save(ctx, redisThreadKey, redisThreadIndex, thread.ThreadID, thread)
}

func (r *Redis) LoadThread(ctx context.Context, threadID string) (*model.Thread, error) {
	var t model.Thread
	ok, err := r.load(ctx, redisThreadKey, threadID, &t)
	if !ok || err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Redis) LoadAllThreads(ctx context.Context) ([]*model.Thread, error) {
	docs, err := r.loadAll(ctx, redisThreadKey, redisThreadIndex)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Thread, 0, len(docs))
	for _, doc := range docs {
		var t model.Thread
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("failed to parse thread: %w", err)
		}
		out = append(out, &t)
	}
	sortThreadsNewestFirst(out)
	return out, nil
}

func (r *Redis) DeleteThread(ctx context.Context, threadID string) (bool, error) {
	return r.remove(ctx, redisThreadKey, redisThreadIndex, threadID)
}

func (r *Redis) SaveFeedback(ctx context.Context, feedback *model.Feedback) error {
	return r.save(ctx, redisFeedbackKey, redisFeedbackIndex, feedback.FeedbackID, feedback)
}

func (r *Redis) LoadFeedback(ctx context.Context, feedbackID string) (*model.Feedback, error) {
	var fb model.Feedback
	ok, err := r.load(ctx, redisFeedbackKey, feedbackID, &fb)
	if !ok || err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *Redis) LoadAllFeedback(ctx context.Context) ([]*model.Feedback, error) {
	docs, err := r.loadAll(ctx, redisFeedbackKey, redisFeedbackIndex)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Feedback, 0, len(docs))
	for _, doc := range docs {
		var fb model.Feedback
		if err := json.Unmarshal(doc, &fb); err != nil {
			return nil, fmt.Errorf("failed to parse feedback: %w", err)
		}
		out = append(out, &fb)
	}
	sortFeedbackNewestFirst(out)
	return out, nil
}

func (r *Redis) DeleteFeedback(ctx context.Context, feedbackID string) (bool, error) {
	return r.remove(ctx, redisFeedbackKey, redisFeedbackIndex, feedbackID)
}

func (r *Redis) Close() error { return r.client.Close() }
