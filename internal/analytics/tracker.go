// Package analytics keeps running statistics over generated responses.
package analytics

import (
	"sync"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/pkg/metrics"
)

// Tracker aggregates response counts, delay and rich content usage.
type Tracker struct {
	mu    sync.Mutex
	stats model.ResponseAnalytics
}

// NewTracker creates a tracker in the zero state.
func NewTracker() *Tracker {
	return &Tracker{stats: zero()}
}

func zero() model.ResponseAnalytics {
	return model.ResponseAnalytics{ResponsesByMode: make(map[string]int)}
}

// Track records one observed response.
func (t *Tracker) Track(resp model.GeneratedResponse) {
	rich := resp.Content.HasVisual()

	t.mu.Lock()
	s := &t.stats
	s.TotalResponses++
	s.ResponsesByMode[string(resp.Mode)]++
	n := float64(s.TotalResponses)
	s.AverageDelayMs = (s.AverageDelayMs*(n-1) + float64(resp.DelayMs)) / n
	if rich {
		s.RichContentUsage++
	}
	t.mu.Unlock()

	metrics.RecordResponse(string(resp.Mode), resp.DelayMs, rich)
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() model.ResponseAnalytics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.stats
	out.ResponsesByMode = make(map[string]int, len(t.stats.ResponsesByMode))
	for k, v := range t.stats.ResponsesByMode {
		out.ResponsesByMode[k] = v
	}
	return out
}

// Reset returns the tracker to the zero state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.stats = zero()
	t.mu.Unlock()
}
