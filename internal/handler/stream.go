package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
	"github.com/capitalize-ai/mock-thread-api/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	threads   *service.ThreadService
	logger    *logger.Logger
	heartbeat time.Duration
	poll      time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(threads *service.ThreadService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		threads:   threads,
		logger:    log,
		heartbeat: 30 * time.Second,
		poll:      time.Second,
	}
}

// Stream handles GET /api/threads/{id}/stream
// Replays the thread's entries, then pushes entries appended afterwards
// until the client disconnects or the thread is deleted.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}

	thread, err := h.threads.Get(ctx, threadID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming not supported", CodeInternal, "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"thread_id": threadID,
	})

	for i := range thread.Entries {
		sendSSEEvent(w, flusher, "entry", &thread.Entries[i])
	}
	sent := len(thread.Entries)

	sendSSEEvent(w, flusher, "replay_complete", &model.ReplayCompleteEvent{
		ThreadID:   threadID,
		EntryCount: sent,
	})

	h.logger.Debug("thread replay complete",
		zap.String("thread_id", threadID),
		zap.Int("entries_replayed", sent),
	)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	poll := time.NewTicker(h.poll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE client disconnected", zap.String("thread_id", threadID))
			return

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", map[string]time.Time{
				"timestamp": time.Now().UTC(),
			})

		case <-poll.C:
			thread, err := h.threads.Get(ctx, threadID)
			if errors.Is(err, service.ErrThreadNotFound) {
				sendSSEEvent(w, flusher, "thread_deleted", map[string]string{
					"thread_id": threadID,
				})
				return
			}
			if err != nil {
				return
			}
			for i := sent; i < len(thread.Entries); i++ {
				sendSSEEvent(w, flusher, "entry", &thread.Entries[i])
			}
			sent = max(sent, len(thread.Entries))
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
