package persistence

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// Restore loads every persisted thread and feedback record into s, oldest
// first. Records that fail to load are reported; the store keeps whatever
// was restored before the failure.
func Restore(ctx context.Context, a Adapter, s *store.Store, log *logger.Logger) error {
	threads, err := a.LoadAllThreads(ctx)
	if err != nil {
		return fmt.Errorf("failed to load threads: %w", err)
	}
	feedback, err := a.LoadAllFeedback(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}

	sort.SliceStable(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	sort.SliceStable(feedback, func(i, j int) bool { return feedback[i].ID < feedback[j].ID })

	nThreads, nFeedback := s.Restore(threads, feedback)
	log.Info("restored persisted data",
		zap.String("backend", a.Name()),
		zap.Int("threads", nThreads),
		zap.Int("feedback", nFeedback),
	)
	return nil
}
