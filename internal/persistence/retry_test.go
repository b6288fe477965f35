package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// flaky fails the first n mutating calls.
type flaky struct {
	Noop
	failures int
	calls    int
}

func (f *flaky) SaveThread(context.Context, *model.Thread) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return nil
}

func (f *flaky) DeleteFeedback(context.Context, string) (bool, error) {
	f.calls++
	if f.calls <= f.failures {
		return false, errors.New("connection reset")
	}
	return true, nil
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	th := sampleThread(1, time.Now())

	t.Run("recovers from transient failures", func(t *testing.T) {
		f := &flaky{failures: 2}
		assert.NoError(t, WithRetry(f, 2, nil).SaveThread(ctx, th))
		assert.Equal(t, 3, f.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		f := &flaky{failures: 5}
		assert.Error(t, WithRetry(f, 1, nil).SaveThread(ctx, th))
		assert.Equal(t, 2, f.calls)
	})

	t.Run("delete result survives retries", func(t *testing.T) {
		f := &flaky{failures: 1}
		deleted, err := WithRetry(f, 2, nil).DeleteFeedback(ctx, "id")
		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("reads pass through", func(t *testing.T) {
		f := &flaky{}
		r := WithRetry(f, 2, nil)
		assert.Equal(t, "none", r.Name())
		got, err := r.LoadThread(ctx, "x")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWithRetryLogsAttempts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{Logger: zap.New(core)}
	th := sampleThread(1, time.Now())

	f := &flaky{failures: 2}
	require.NoError(t, WithRetry(f, 2, log).SaveThread(context.Background(), th))

	entries := logs.FilterMessage("persistence call failed, retrying").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "none", fields["backend"])
	assert.Equal(t, "save_thread", fields["op"])
	assert.Equal(t, th.ThreadID, fields["id"])
	assert.Equal(t, "connection reset", fields["error"])
}
