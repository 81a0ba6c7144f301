// Package throttle caps how many extractions the service admits per fixed
// window. It is a single global gate, not a per-client one.
package throttle

import (
	"sync"
	"time"

	"github.com/mkardas/job-extractor/internal/clock"
)

const (
	// DefaultWindow is the length of the counting window.
	DefaultWindow = 10 * time.Second
	// DefaultLimit is how many requests a window admits.
	DefaultLimit = 3
)

// Throttle admits up to limit requests per window. The window resets only
// once it has fully elapsed; rejected requests do not extend it.
type Throttle struct {
	mu          sync.Mutex
	window      time.Duration
	limit       int
	windowStart time.Time
	count       int
	clock       clock.Clock
}

// New builds a throttle. Non-positive window or limit fall back to the
// defaults.
func New(window time.Duration, limit int, clk clock.Clock) *Throttle {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Throttle{window: window, limit: limit, clock: clk}
}

// Allow reports whether a request may proceed, counting it if so.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if t.windowStart.IsZero() || now.Sub(t.windowStart) >= t.window {
		t.windowStart = now
		t.count = 0
	}
	if t.count >= t.limit {
		return false
	}
	t.count++
	return true
}

// Retry reports how long a caller should wait before the current window
// rolls over. Zero when the throttle would admit a request right now.
func (t *Throttle) Retry() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.windowStart.IsZero() || t.count < t.limit {
		return 0
	}
	remaining := t.window - t.clock.Now().Sub(t.windowStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}
