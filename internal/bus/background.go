package bus

import (
	"context"
	"time"
)

// RunTicker calls fn once per interval until ctx is cancelled, then
// returns. Grounded on dcosson-h2/internal/session/session.go's
// TickStatus (a 1-second ticker driving a periodic re-render of every
// connected client's status bar) and RunDelivery's ticker-or-notify select
// loop, generalized into a single reusable helper. No code in this module
// calls it.
func RunTicker(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// RenderCoalescer batches Notify calls arriving within a single tick
// interval into one pending flag, so a burst of pane output produces at
// most one repaint per interval instead of one per output batch. Mirrors
// the teacher's RunDelivery select on "ticker OR queue-notify, whichever
// comes first" — here every pane's output notify feeds the same coalescer
// rather than one queue's Notify channel.
type RenderCoalescer struct {
	notify chan struct{}
}

// NewRenderCoalescer creates a coalescer with a single-slot pending flag.
func NewRenderCoalescer() *RenderCoalescer {
	return &RenderCoalescer{notify: make(chan struct{}, 1)}
}

// Notify marks a repaint as pending. Safe to call from any goroutine
// (typically a pane's OnOutput callback); never blocks.
func (c *RenderCoalescer) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, calling fn at most once per interval
// and only when at least one Notify arrived since the last call.
func (c *RenderCoalescer) Run(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-c.notify:
				fn()
			default:
			}
		}
	}
}
