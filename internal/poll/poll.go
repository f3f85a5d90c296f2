// Package poll runs a function on a fixed interval without overlapping calls.
package poll

import (
	"context"
	"time"
)

// Run calls fn immediately and then once per interval until ctx is cancelled.
// A slow fn delays the next call rather than stacking ticks.
func Run(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		interval = time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		fn(ctx)
		if ctx.Err() != nil {
			return
		}
		timer.Reset(interval)
	}
}
