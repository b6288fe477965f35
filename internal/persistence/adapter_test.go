package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/mock-thread-api/internal/config"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

func sampleThread(id int64, created time.Time) *model.Thread {
	threadID := uuid.NewString()
	return &model.Thread{
		ID:        id,
		ThreadID:  threadID,
		UserID:    "u1",
		CreatedAt: created,
		Entries: []model.Entry{
			{
				ID:        id * 10,
				EntryID:   uuid.NewString(),
				ThreadID:  threadID,
				Category:  model.CategoryRequest,
				CreatedAt: created,
				Data:      model.Message{Role: model.RoleUser, Content: model.Content{Text: "hello"}},
			},
			{
				ID:        id*10 + 1,
				EntryID:   uuid.NewString(),
				ThreadID:  threadID,
				Category:  model.CategoryResponse,
				CreatedAt: created,
				Data: model.Message{Role: model.RoleAssistant, Content: model.Content{
					Text:    "hi",
					Visual:  map[string]any{},
					Sources: []string{},
				}},
			},
		},
	}
}

func sampleFeedback(id int64, created time.Time) *model.Feedback {
	comment := "useful"
	return &model.Feedback{
		ID:         id,
		FeedbackID: uuid.NewString(),
		EntryID:    uuid.NewString(),
		ThreadID:   uuid.NewString(),
		UserID:     "u1",
		Rating:     model.RatingThumbsUp,
		Comment:    &comment,
		CreatedAt:  created,
	}
}

// runAdapterSuite checks the behavior every backend shares.
func runAdapterSuite(t *testing.T, a Adapter) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("missing records load as nil", func(t *testing.T) {
		th, err := a.LoadThread(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, th)

		fb, err := a.LoadFeedback(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, fb)

		deleted, err := a.DeleteThread(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	older := sampleThread(1, base)
	newer := sampleThread(2, base.Add(time.Hour))

	t.Run("threads round trip", func(t *testing.T) {
		require.NoError(t, a.SaveThread(ctx, older))
		require.NoError(t, a.SaveThread(ctx, newer))

		got, err := a.LoadThread(ctx, older.ThreadID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, older.ThreadID, got.ThreadID)
		require.Len(t, got.Entries, 2)
		assert.Equal(t, "hello", got.Entries[0].Data.Content.Text)
		assert.NotNil(t, got.Entries[1].Data.Content.Sources)
		assert.Nil(t, got.Entries[0].Data.Content.Sources)
		assert.True(t, older.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("load all is newest first", func(t *testing.T) {
		all, err := a.LoadAllThreads(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ThreadID, all[0].ThreadID)
		assert.Equal(t, older.ThreadID, all[1].ThreadID)
	})

	t.Run("saving again overwrites", func(t *testing.T) {
		older.Entries = append(older.Entries, older.Entries[0])
		require.NoError(t, a.SaveThread(ctx, older))

		got, err := a.LoadThread(ctx, older.ThreadID)
		require.NoError(t, err)
		assert.Len(t, got.Entries, 3)

		all, err := a.LoadAllThreads(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("delete thread", func(t *testing.T) {
		deleted, err := a.DeleteThread(ctx, older.ThreadID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := a.LoadThread(ctx, older.ThreadID)
		require.NoError(t, err)
		assert.Nil(t, got)

		all, err := a.LoadAllThreads(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("feedback round trip", func(t *testing.T) {
		f1 := sampleFeedback(1, base)
		f2 := sampleFeedback(2, base.Add(time.Minute))
		require.NoError(t, a.SaveFeedback(ctx, f1))
		require.NoError(t, a.SaveFeedback(ctx, f2))

		got, err := a.LoadFeedback(ctx, f1.FeedbackID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "useful", *got.Comment)

		all, err := a.LoadAllFeedback(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, f2.FeedbackID, all[0].FeedbackID)

		deleted, err := a.DeleteFeedback(ctx, f1.FeedbackID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = a.DeleteFeedback(ctx, f1.FeedbackID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var a Adapter = Noop{}

	require.NoError(t, a.SaveThread(ctx, sampleThread(1, time.Now())))
	threads, err := a.LoadAllThreads(ctx)
	require.NoError(t, err)
	assert.Empty(t, threads)
	assert.Equal(t, "none", a.Name())
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		a, err := New(ctx, &config.Config{EnablePersistence: false, PersistenceType: config.PersistenceFile}, Deps{})
		require.NoError(t, err)
		assert.IsType(t, Noop{}, a)
	})

	t.Run("memory", func(t *testing.T) {
		a, err := New(ctx, &config.Config{EnablePersistence: true, PersistenceType: config.PersistenceMemory}, Deps{})
		require.NoError(t, err)
		assert.IsType(t, Noop{}, a)
	})

	t.Run("file", func(t *testing.T) {
		a, err := New(ctx, &config.Config{
			EnablePersistence: true,
			PersistenceType:   config.PersistenceFile,
			DataDirectory:     t.TempDir(),
		}, Deps{})
		require.NoError(t, err)
		assert.Equal(t, "file", a.Name())
	})

	t.Run("nats without connection", func(t *testing.T) {
		_, err := New(ctx, &config.Config{EnablePersistence: true, PersistenceType: config.PersistenceNATS}, Deps{})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(ctx, &config.Config{EnablePersistence: true, PersistenceType: "mongo"}, Deps{})
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	a, err := NewFile(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := sampleThread(1, base)
	second := sampleThread(2, base.Add(time.Hour))
	fb := sampleFeedback(4, base)
	require.NoError(t, a.SaveThread(ctx, second))
	require.NoError(t, a.SaveThread(ctx, first))
	require.NoError(t, a.SaveFeedback(ctx, fb))

	s := store.New()
	require.NoError(t, Restore(ctx, a, s, logger.NewNop()))

	threads := s.ListThreads()
	require.Len(t, threads, 2)
	assert.Equal(t, first.ThreadID, threads[0].ThreadID)
	assert.Equal(t, second.ThreadID, threads[1].ThreadID)
	assert.Len(t, s.ListFeedback(), 1)

	next := s.CreateThread("u2", model.Message{Role: model.RoleUser})
	assert.Equal(t, int64(3), next.ID)
	assert.Equal(t, int64(22), next.Entries[0].ID)

	nextFb := s.CreateFeedback("e", "t", "u", model.RatingThumbsDown, nil)
	assert.Equal(t, int64(5), nextFb.ID)
}
