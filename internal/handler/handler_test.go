package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/mock-thread-api/internal/analytics"
	"github.com/capitalize-ai/mock-thread-api/internal/config"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

func noSleep(context.Context, time.Duration) error { return nil }

type fakeNATS struct{ connected bool }

func (f fakeNATS) IsConnected() bool { return f.connected }

type testServer struct {
	handler http.Handler
	threads *service.ThreadService
	tracker *analytics.Tracker
}

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:         "8000",
		Env:                "test",
		ServerReadTimeout:  time.Second,
		ServerWriteTimeout: time.Second,
		DefaultDelayMs:     250,
		MaxDelayMs:         5000,
		MockResponseMode:   model.ModeEcho,
		PersistenceType:    config.PersistenceMemory,
		CORSEnabled:        true,
		CORSOrigins:        []string{"*"},
		LogLevel:           "error",
	}
}

func newTestServer(t *testing.T, nats ConnectionChecker) *testServer {
	t.Helper()
	cfg := testConfig()
	log := logger.NewNop()
	st := store.New()
	catalog := responder.DefaultCatalog()
	tracker := analytics.NewTracker()
	gen := responder.NewGenerator(catalog, cfg.Responder(), responder.NewSeededRand(1, 2))

	threads := service.NewThreadService(st, gen, tracker, nil, log, service.WithSleeper(noSleep))
	feedback := service.NewFeedbackService(st, nil, nil, log)
	users := service.NewUserService(st, log)

	h := NewRouter(Deps{
		Config:   cfg,
		Logger:   log,
		Threads:  threads,
		Feedback: feedback,
		Users:    users,
		Catalog:  catalog,
		Tracker:  tracker,
		NATS:     nats,
		Sleep:    noSleep,
	})
	return &testServer{handler: h, threads: threads, tracker: tracker}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func postBody(threadID, text string) map[string]any {
	body := map[string]any{
		"userId": "user-1",
		"message": map[string]any{
			"role":    "user",
			"content": map[string]any{"text": text},
		},
	}
	if threadID != "" {
		body["threadId"] = threadID
	}
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		nats ConnectionChecker
		want int
	}{
		{"without nats", nil, http.StatusOK},
		{"nats connected", fakeNATS{connected: true}, http.StatusOK},
		{"nats down", fakeNATS{connected: false}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.nats)
			rec := s.do(t, http.MethodGet, "/ready", nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPostThread(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/threads", postBody("", "hello"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	thread := decode[model.Thread](t, rec)
	require.Len(t, thread.Entries, 2)
	assert.Equal(t, "user-1", thread.UserID)
	assert.Equal(t, model.CategoryRequest, thread.Entries[0].Category)
	assert.Equal(t, model.CategoryResponse, thread.Entries[1].Category)
	assert.Equal(t, "Mock response to: hello", thread.Entries[1].Data.Content.Text)

	rec = s.do(t, http.MethodPost, "/api/threads", postBody(thread.ThreadID, "again"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.Thread](t, rec).Entries, 4)

	stats := s.tracker.Snapshot()
	assert.Equal(t, 2, stats.TotalResponses)
	assert.Equal(t, 2, stats.ResponsesByMode["echo"])
}

func TestPostThreadErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown thread",
			body:       postBody(uuid.NewString(), "hello"),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeThreadNotFound,
		},
		{
			name:       "missing user",
			body:       map[string]any{"message": map[string]any{"role": "user"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "bad role",
			body:       map[string]any{"userId": "u", "message": map[string]any{"role": "robot"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "bad thread id",
			body:       postBody("not-a-uuid", "hello"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/threads", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			errResp := decode[model.ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.Equal(t, "/api/threads", errResp.Path)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/threads", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errResp := decode[model.ErrorResponse](t, rec)
		assert.Equal(t, "Invalid request body", errResp.Error)
	})
}

func TestThreadLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	thread := decode[model.Thread](t, s.do(t, http.MethodPost, "/api/threads", postBody("", "hello")))

	rec := s.do(t, http.MethodGet, "/api/threads/"+thread.ThreadID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, thread.ThreadID, decode[model.Thread](t, rec).ThreadID)

	rec = s.do(t, http.MethodGet, "/api/threads", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Thread](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/threads/"+thread.ThreadID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DeleteResponse{Deleted: true, ID: thread.ThreadID}, decode[model.DeleteResponse](t, rec))

	rec = s.do(t, http.MethodGet, "/api/threads/"+thread.ThreadID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/threads/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadEventsDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	thread := decode[model.Thread](t, s.do(t, http.MethodPost, "/api/threads", postBody("", "hello")))

	rec := s.do(t, http.MethodGet, "/api/threads/"+thread.ThreadID+"/events", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeEventsDisabled, decode[model.ErrorResponse](t, rec).Code)
}

func TestFeedbackEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	thread := decode[model.Thread](t, s.do(t, http.MethodPost, "/api/threads", postBody("", "hello")))
	entryID := thread.Entries[1].EntryID

	rec := s.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"entryId":  entryID,
		"threadId": thread.ThreadID,
		"userId":   "user-1",
		"rating":   "thumbs_up",
		"comment":  "nice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fb := decode[model.Feedback](t, rec)
	assert.Equal(t, entryID, fb.EntryID)
	require.NotNil(t, fb.Comment)
	assert.Equal(t, "nice", *fb.Comment)

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"entryId":  uuid.NewString(),
		"threadId": thread.ThreadID,
		"userId":   "user-1",
		"rating":   "thumbs_down",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeEntryNotFound, decode[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"entryId":  entryID,
		"threadId": thread.ThreadID,
		"userId":   "user-1",
		"rating":   "meh",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/feedback/"+fb.FeedbackID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/entries/"+entryID+"/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Feedback](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/threads/"+thread.ThreadID+"/feedback/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decode[model.FeedbackCounts](t, rec)
	assert.Equal(t, 1, counts.ThumbsUp)
	assert.Equal(t, 1, counts.Total)

	rec = s.do(t, http.MethodGet, "/api/feedback/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[model.FeedbackCounts](t, rec).Total)

	rec = s.do(t, http.MethodDelete, "/api/feedback/"+fb.FeedbackID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/feedback/"+fb.FeedbackID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeFeedbackNotFound, decode[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Feedback](t, rec))
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	req := map[string]any{
		"userId":    "u-1",
		"email":     "ada@example.com",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"role":      "admin",
	}

	rec := s.do(t, http.MethodPost, "/api/user", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u := decode[model.User](t, rec)
	assert.Equal(t, "u-1", u.UserID)
	assert.Equal(t, "Ada", u.FirstName)

	rec = s.do(t, http.MethodPost, "/api/user", req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeUserExists, decode[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/user", map[string]any{"userId": "u-2", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.User](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/user/u-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/user/u-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMockEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/mock/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[map[string]any](t, rec)
	assert.Equal(t, "echo", cfg["mockResponseMode"])
	assert.EqualValues(t, 5000, cfg["maxDelayMs"])
	assert.Len(t, cfg, 6)

	rec = s.do(t, http.MethodGet, "/api/mock/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[model.ListScenariosResponse](t, rec)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Scenarios, 2)

	rec = s.do(t, http.MethodGet, "/api/mock/scenarios/customer_support", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/mock/scenarios/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, "Scenario not found", errResp.Error)
	assert.Equal(t, CodeScenarioNotFound, errResp.Code)

	s.do(t, http.MethodPost, "/api/threads", postBody("", "hello"))
	rec = s.do(t, http.MethodGet, "/api/mock/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[model.ResponseAnalytics](t, rec).TotalResponses)

	rec = s.do(t, http.MethodDelete, "/api/mock/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Analytics reset successfully", decode[map[string]string](t, rec)["message"])
	assert.Equal(t, 0, s.tracker.Snapshot().TotalResponses)
}

func TestForcedError(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/threads?error=503", postBody("", "hello"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "FORCED_ERROR", decode[model.ErrorResponse](t, rec).Code)
	assert.Empty(t, s.threads.List(context.Background()))

	// reads are not subject to fault simulation
	rec = s.do(t, http.MethodGet, "/api/threads?error=503", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamReplaysAndFollows(t *testing.T) {
	s := newTestServer(t, nil)
	thread := decode[model.Thread](t, s.do(t, http.MethodPost, "/api/threads", postBody("", "hello")))

	h := NewStreamHandler(s.threads, logger.NewNop())
	h.poll = 10 * time.Millisecond
	r := chi.NewRouter()
	r.Get("/api/threads/{id}/stream", h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/threads/"+thread.ThreadID+"/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, reader).name)
	for i := 0; i < 2; i++ {
		ev := readEvent(t, reader)
		require.Equal(t, "entry", ev.name)
		var entry model.Entry
		require.NoError(t, json.Unmarshal([]byte(ev.data), &entry))
		assert.Equal(t, thread.Entries[i].EntryID, entry.EntryID)
	}
	done := readEvent(t, reader)
	require.Equal(t, "replay_complete", done.name)
	var complete model.ReplayCompleteEvent
	require.NoError(t, json.Unmarshal([]byte(done.data), &complete))
	assert.Equal(t, 2, complete.EntryCount)

	_, err = s.threads.Post(context.Background(), service.PostThreadInput{
		ThreadID: thread.ThreadID,
		UserID:   "user-1",
		Message:  model.Message{Role: model.RoleUser, Content: model.Content{Text: "more"}},
	})
	require.NoError(t, err)

	var entry model.Entry
	ev := readEvent(t, reader)
	require.Equal(t, "entry", ev.name)
	require.NoError(t, json.Unmarshal([]byte(ev.data), &entry))
	assert.Equal(t, "more", entry.Data.Content.Text)

	require.NoError(t, s.threads.Delete(context.Background(), thread.ThreadID))
	for {
		ev = readEvent(t, reader)
		if ev.name != "entry" {
			break
		}
	}
	assert.Equal(t, "thread_deleted", ev.name)
}

func TestStreamUnknownThread(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/threads/"+uuid.NewString()+"/stream", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
