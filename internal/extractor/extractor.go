// Package extractor orchestrates the extraction pipeline: admission,
// cache, site dispatch, fetch, parse, enrichment and merge.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mkardas/job-extractor/internal/blocked"
	"github.com/mkardas/job-extractor/internal/enrich"
	"github.com/mkardas/job-extractor/internal/fetcher"
	"github.com/mkardas/job-extractor/internal/hash/sha256"
	"github.com/mkardas/job-extractor/internal/jobs"
	"github.com/mkardas/job-extractor/internal/parser"
	"github.com/mkardas/job-extractor/internal/sites"
	"github.com/mkardas/job-extractor/internal/telemetry"
	"github.com/mkardas/job-extractor/internal/urlnorm"
)

// MinTextLength is the shortest pasted text worth sending to the model.
const MinTextLength = 50

// Cache stores finished records keyed by normalized URL or text hash.
type Cache interface {
	Get(key string) (jobs.JobRecord, bool)
	Set(key string, record jobs.JobRecord)
	Cleanup() int
}

// Throttle admits or rejects a fetch before any other work happens. Retry
// reports the wait until a rejected caller should try again.
type Throttle interface {
	Allow() bool
	Retry() time.Duration
}

// Enricher fills record gaps with a language model.
type Enricher interface {
	ExtractFromHTML(ctx context.Context, content, pageURL string) (jobs.JobRecord, error)
	ExtractFromText(ctx context.Context, text string) (jobs.JobRecord, error)
}

// Politeness paces outbound fetches per host.
type Politeness interface {
	Wait(ctx context.Context, rawURL string) error
}

// RenderDetector decides whether a response needs a browser retry.
type RenderDetector interface {
	ShouldRender(resp fetcher.Response) bool
}

// Pipeline wires the extraction stages together.
type Pipeline struct {
	cache      Cache
	throttle   Throttle
	fetch      fetcher.Fetcher
	headless   fetcher.Fetcher
	detector   RenderDetector
	enricher   Enricher
	politeness Politeness
	logger     *zap.Logger
}

// Options carries the pipeline dependencies. Headless, Detector, Enricher
// and Politeness are optional; the rest are required.
type Options struct {
	Cache      Cache
	Throttle   Throttle
	Fetcher    fetcher.Fetcher
	Headless   fetcher.Fetcher
	Detector   RenderDetector
	Enricher   Enricher
	Politeness Politeness
	Logger     *zap.Logger
}

// New builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Cache == nil || opts.Throttle == nil || opts.Fetcher == nil {
		return nil, fmt.Errorf("cache, throttle and fetcher are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cache:      opts.Cache,
		throttle:   opts.Throttle,
		fetch:      opts.Fetcher,
		headless:   opts.Headless,
		detector:   opts.Detector,
		enricher:   opts.Enricher,
		politeness: opts.Politeness,
		logger:     logger,
	}, nil
}

// ExtractURL runs the full pipeline for one posting URL.
func (p *Pipeline) ExtractURL(ctx context.Context, rawURL string) (jobs.JobRecord, error) {
	if !p.throttle.Allow() {
		telemetry.ObserveThrottleRejection()
		return jobs.JobRecord{}, jobs.NewError(jobs.KindRateLimited,
			"too many requests, slow down").
			WithRetryAfter(p.throttle.Retry()).
			WithRecord(jobs.Placeholder(rawURL, "rate limited"))
	}

	normalized, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return jobs.JobRecord{}, jobs.NewError(jobs.KindInvalidInput,
			"invalid job posting URL").WithCause(err).
			WithRecord(jobs.Placeholder(rawURL, "invalid URL"))
	}

	if rec, ok := p.cache.Get(normalized); ok {
		telemetry.ObserveCacheHit()
		p.logger.Debug("cache hit", zap.String("url", normalized))
		return rec, nil
	}
	telemetry.ObserveCacheMiss()

	host := urlnorm.Host(normalized)
	profile := sites.Classify(host)

	if profile.Outcome == sites.OutcomeBlocked {
		result := blocked.FromURL(normalized)
		result.Record.ApplyFallbacks(normalized)
		p.cache.Set(normalized, result.Record)
		telemetry.ObserveExtraction(host, "blocked")
		return jobs.JobRecord{}, jobs.NewError(jobs.KindBlockedSite,
			"this site blocks automated extraction").
			WithRecord(result.Record)
	}

	resp, err := p.fetchPage(ctx, normalized, host)
	if err != nil {
		telemetry.ObserveExtraction(host, "fetch_failed")
		return jobs.JobRecord{}, err
	}

	result, err := p.parseResponse(ctx, resp, normalized, profile)
	if err != nil {
		telemetry.ObserveExtraction(host, "parse_failed")
		return jobs.JobRecord{}, err
	}

	record, err := p.enrichResult(ctx, result, resp, normalized)
	if err != nil {
		telemetry.ObserveExtraction(host, "enrichment_failed")
		return jobs.JobRecord{}, err
	}

	record.ApplyFallbacks(normalized)
	if record.ErrorDetail == "" {
		p.cache.Set(normalized, record)
	} else {
		// A record whose only content is fallback literals came from a
		// failed strategy; caching it would pin the failure for the TTL.
		p.logger.Warn("degraded record not cached",
			zap.String("url", normalized), zap.String("detail", record.ErrorDetail))
	}
	telemetry.ObserveExtraction(host, "ok")
	p.logger.Info("extracted posting",
		zap.String("url", normalized),
		zap.String("site", host),
		zap.String("title", record.Title),
		zap.Bool("headless", resp.UsedHeadless),
	)
	return record, nil
}

// ExtractText runs the enrichment-only path on pasted posting text. The
// admission throttle guards network fetches only, so text requests bypass
// it.
func (p *Pipeline) ExtractText(ctx context.Context, text string) (jobs.JobRecord, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextLength {
		return jobs.JobRecord{}, jobs.NewError(jobs.KindInvalidInput,
			fmt.Sprintf("text is too short to be a job posting (minimum %d characters)", MinTextLength)).
			WithRecord(jobs.Placeholder(jobs.TextInputURL, "text too short"))
	}
	if p.enricher == nil {
		return jobs.JobRecord{}, jobs.NewError(jobs.KindEnrichmentFailed,
			"text extraction requires the language model, which is not configured").
			WithRecord(jobs.Placeholder(jobs.TextInputURL, "enrichment disabled"))
	}

	key := sha256.SumText(trimmed)
	if rec, ok := p.cache.Get(key); ok {
		telemetry.ObserveCacheHit()
		return rec, nil
	}
	telemetry.ObserveCacheMiss()

	record, err := p.enricher.ExtractFromText(ctx, trimmed)
	if err != nil {
		return jobs.JobRecord{}, err
	}
	record.ApplyFallbacks(jobs.TextInputURL)
	if record.ErrorDetail == "" {
		p.cache.Set(key, record)
	}
	telemetry.ObserveExtraction("text", "ok")
	return record, nil
}

// RunCacheJanitor sweeps expired cache entries until ctx is canceled.
func (p *Pipeline) RunCacheJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := p.cache.Cleanup(); removed > 0 {
				p.logger.Info("cache janitor removed expired entries", zap.Int("removed", removed))
			}
		}
	}
}

// fetchPage retrieves the posting, retrying with the browser when the first
// response looks like an unrendered shell.
func (p *Pipeline) fetchPage(ctx context.Context, pageURL, host string) (fetcher.Response, error) {
	if p.politeness != nil {
		if err := p.politeness.Wait(ctx, pageURL); err != nil {
			return fetcher.Response{}, jobs.NewError(jobs.KindFetchFailed,
				"fetch canceled while pacing").WithCause(err).
				WithRecord(jobs.Placeholder(pageURL, "fetch canceled"))
		}
	}

	req := fetcher.Request{URL: pageURL, Headers: fetcher.BrowserHeaders(host)}
	resp, err := p.fetch.Fetch(ctx, req)
	if err != nil {
		return fetcher.Response{}, jobs.NewError(jobs.KindFetchFailed,
			"could not reach the job posting site").WithCause(err).
			WithRecord(jobs.Placeholder(pageURL, "fetch failed"))
	}
	telemetry.ObserveFetch(host, "plain", resp.Duration)

	if resp.StatusCode >= 400 {
		return fetcher.Response{}, upstreamError(pageURL, resp.StatusCode)
	}

	if p.headless != nil && p.detector != nil && p.detector.ShouldRender(resp) {
		p.logger.Debug("retrying with headless browser", zap.String("url", pageURL))
		rendered, err := p.headless.Fetch(ctx, req)
		if err != nil {
			// The plain response is still usable; log and keep it.
			p.logger.Warn("headless retry failed", zap.String("url", pageURL), zap.Error(err))
			return resp, nil
		}
		telemetry.ObserveFetch(host, "headless", rendered.Duration)
		if rendered.StatusCode < 400 && len(rendered.Body) > 0 {
			return rendered, nil
		}
	}
	return resp, nil
}

// parseResponse dispatches to the site parser, falling back to structured
// data for unrecognized boards.
func (p *Pipeline) parseResponse(_ context.Context, resp fetcher.Response, pageURL string, profile sites.Profile) (jobs.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return jobs.ParseResult{}, jobs.NewError(jobs.KindParseFailure,
			"could not parse the page HTML").WithCause(err).
			WithRecord(jobs.Placeholder(pageURL, "unparseable HTML"))
	}

	if profile.Outcome == sites.OutcomeParser {
		if site, ok := parser.Lookup(profile.Parser); ok {
			return site.Parse(doc, pageURL), nil
		}
	}

	// Generic hosts still often carry schema.org JobPosting data.
	if result, ok := parser.ParseStructured(doc, pageURL); ok {
		return result, nil
	}
	return jobs.ParseResult{
		Record:          jobs.JobRecord{URL: pageURL},
		NeedsEnrichment: true,
	}, nil
}

// enrichResult runs the language model over the page when the parser asked
// for it, merging with parser precedence.
func (p *Pipeline) enrichResult(ctx context.Context, result jobs.ParseResult, resp fetcher.Response, pageURL string) (jobs.JobRecord, error) {
	if p.enricher == nil || !result.NeedsEnrichment {
		return result.Record, nil
	}

	content := enrich.CleanContent(string(resp.Body))
	enriched, err := p.enricher.ExtractFromHTML(ctx, content, pageURL)
	if err != nil {
		// A parsed record with substance beats failing the whole request.
		if result.Record.Title != "" || result.Record.Description != "" {
			p.logger.Warn("enrichment failed, returning parsed record",
				zap.String("url", pageURL), zap.Error(err))
			return result.Record, nil
		}
		if jerr, ok := jobs.AsError(err); ok {
			return jobs.JobRecord{}, jerr.WithRecord(jobs.Placeholder(pageURL, "enrichment failed"))
		}
		return jobs.JobRecord{}, jobs.NewError(jobs.KindEnrichmentFailed,
			"could not extract job information").WithCause(err).
			WithRecord(jobs.Placeholder(pageURL, "enrichment failed"))
	}
	return jobs.Merge(result.Record, enriched), nil
}

// upstreamError maps an upstream HTTP status onto a pipeline error.
func upstreamError(pageURL string, status int) *jobs.Error {
	var (
		kind    = jobs.KindFetchFailed
		message string
	)
	switch status {
	case http.StatusForbidden:
		kind = jobs.KindBlockedSite
		message = "the job posting site refused the request"
	case http.StatusNotFound:
		message = "the job posting was not found, it may have been removed"
	case http.StatusTooManyRequests:
		kind = jobs.KindRateLimited
		message = "the job posting site is rate limiting requests"
	default:
		message = fmt.Sprintf("the job posting site returned status %d", status)
	}
	err := jobs.NewError(kind, message).
		WithRecord(jobs.Placeholder(pageURL, message))
	if status == http.StatusNotFound {
		err = err.WithStatus(http.StatusNotFound)
	}
	return err
}
