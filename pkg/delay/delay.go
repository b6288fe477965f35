// Package delay provides the context-aware sleep behind simulated latency.
package delay

import (
	"context"
	"time"
)

// Func waits for d or until ctx is done.
type Func func(ctx context.Context, d time.Duration) error

// Sleep waits for d and returns ctx.Err() if ctx ends first. A non-positive
// d does not wait but still reports a finished ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
