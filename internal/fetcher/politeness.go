package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkardas/job-extractor/internal/telemetry"
)

// Politeness spaces out fetches per host with a token bucket, replacing
// blind sleep-between-requests delays.
type Politeness struct {
	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// PolitenessConfig holds the per-host pacing knobs.
type PolitenessConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// NewPoliteness creates the per-host pacer. A non-positive rate disables
// pacing entirely.
func NewPoliteness(cfg PolitenessConfig) *Politeness {
	r := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Politeness{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Wait blocks until the host's bucket grants a token, respecting ctx.
func (p *Politeness) Wait(ctx context.Context, rawURL string) error {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	p.mu.Lock()
	limiter, exists := p.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(p.defaultRate, p.defaultBurst)
		p.limiters[host] = limiter
	}
	p.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	if delay := time.Since(start); delay > time.Millisecond {
		telemetry.ObservePolitenessDelay(host, delay)
	}
	return nil
}
