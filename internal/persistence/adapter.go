// Package persistence snapshots threads and feedback to durable storage.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/capitalize-ai/mock-thread-api/internal/config"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	natsclient "github.com/capitalize-ai/mock-thread-api/internal/nats"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// ErrUnknownBackend is returned by New for an unsupported persistence type.
var ErrUnknownBackend = errors.New("unknown persistence backend")

// Adapter stores thread and feedback snapshots. Loaders return (nil, nil)
// for a missing record and deleters report whether a record was removed.
type Adapter interface {
	Name() string

	SaveThread(ctx context.Context, thread *model.Thread) error
	LoadThread(ctx context.Context, threadID string) (*model.Thread, error)
	LoadAllThreads(ctx context.Context) ([]*model.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (bool, error)

	SaveFeedback(ctx context.Context, feedback *model.Feedback) error
	LoadFeedback(ctx context.Context, feedbackID string) (*model.Feedback, error)
	LoadAllFeedback(ctx context.Context) ([]*model.Feedback, error)
	DeleteFeedback(ctx context.Context, feedbackID string) (bool, error)

	Close() error
}

// Deps carries connections shared with the rest of the process.
type Deps struct {
	NATS   *natsclient.Client
	Logger *logger.Logger
}

// New selects the adapter configured by cfg.
func New(ctx context.Context, cfg *config.Config, deps Deps) (Adapter, error) {
	if !cfg.EnablePersistence {
		return Noop{}, nil
	}

	switch cfg.PersistenceType {
	case config.PersistenceMemory:
		return Noop{}, nil

	case config.PersistenceFile:
		return NewFile(cfg.DataDirectory)

	case config.PersistenceRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return WithRetry(NewRedis(client, deps.Logger), defaultRetries, deps.Logger), nil

	case config.PersistenceNATS:
		if deps.NATS == nil {
			return nil, fmt.Errorf("nats persistence requires NATS_ENABLED")
		}
		a, err := NewNATSKV(ctx, deps.NATS)
		if err != nil {
			return nil, err
		}
		return WithRetry(a, defaultRetries, deps.Logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.PersistenceType)
	}
}

// Noop discards writes and loads nothing. It backs the disabled and memory
// persistence types.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) SaveThread(context.Context, *model.Thread) error { return nil }

func (Noop) LoadThread(context.Context, string) (*model.Thread, error) { return nil, nil }

func (Noop) LoadAllThreads(context.Context) ([]*model.Thread, error) { return nil, nil }

func (Noop) DeleteThread(context.Context, string) (bool, error) { return false, nil }

func (Noop) SaveFeedback(context.Context, *model.Feedback) error { return nil }

func (Noop) LoadFeedback(context.Context, string) (*model.Feedback, error) { return nil, nil }

func (Noop) LoadAllFeedback(context.Context) ([]*model.Feedback, error) { return nil, nil }

func (Noop) DeleteFeedback(context.Context, string) (bool, error) { return false, nil }

func (Noop) Close() error { return nil }

func sortThreadsNewestFirst(threads []*model.Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
}

func sortFeedbackNewestFirst(list []*model.Feedback) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
