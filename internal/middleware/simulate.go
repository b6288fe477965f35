package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/capitalize-ai/mock-thread-api/pkg/delay"
)

// Simulator injects faults requested through query parameters.
type Simulator struct {
	DefaultDelayMs int
	MaxDelayMs     int
	Sleep          delay.Func
}

// Handler answers ?error=<status> with a forced error response and sleeps
// ?delayMs=<n> milliseconds, or DefaultDelayMs, capped at MaxDelayMs.
func (s Simulator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if raw := q.Get("error"); raw != "" {
			respondError(w, r, forcedStatus(raw), "forced error", "FORCED_ERROR")
			return
		}

		if d := s.delayFor(q.Get("delayMs")); d > 0 {
			if err := s.sleep(r.Context(), d); err != nil {
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s Simulator) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	return delay.Sleep(ctx, d)
}

func (s Simulator) delayFor(raw string) time.Duration {
	ms := s.DefaultDelayMs
	if raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			ms = v
		}
	}
	ms = min(ms, s.MaxDelayMs)
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// forcedStatus maps the error parameter to an HTTP error status, using 500
// for anything outside 400-599.
func forcedStatus(raw string) int {
	status, err := strconv.Atoi(raw)
	if err != nil || status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}
