package extractor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkardas/job-extractor/internal/fetcher"
	"github.com/mkardas/job-extractor/internal/jobs"
)

type fakeCache struct {
	entries map[string]jobs.JobRecord
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]jobs.JobRecord)}
}

func (c *fakeCache) Get(key string) (jobs.JobRecord, bool) {
	rec, ok := c.entries[key]
	return rec, ok
}

func (c *fakeCache) Set(key string, record jobs.JobRecord) {
	c.entries[key] = record
}

func (c *fakeCache) Cleanup() int { return 0 }

type fakeThrottle struct {
	allow bool
	retry time.Duration
	calls int
}

func (t *fakeThrottle) Allow() bool {
	t.calls++
	return t.allow
}

func (t *fakeThrottle) Retry() time.Duration { return t.retry }

type fakeFetcher struct {
	resp   fetcher.Response
	err    error
	visits int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ fetcher.Request) (fetcher.Response, error) {
	f.visits++
	if f.err != nil {
		return fetcher.Response{}, f.err
	}
	return f.resp, nil
}

type fakeEnricher struct {
	htmlRecord jobs.JobRecord
	textRecord jobs.JobRecord
	err        error
	htmlCalls  int
	textCalls  int
}

func (e *fakeEnricher) ExtractFromHTML(_ context.Context, _, _ string) (jobs.JobRecord, error) {
	e.htmlCalls++
	if e.err != nil {
		return jobs.JobRecord{}, e.err
	}
	return e.htmlRecord, nil
}

func (e *fakeEnricher) ExtractFromText(_ context.Context, _ string) (jobs.JobRecord, error) {
	e.textCalls++
	if e.err != nil {
		return jobs.JobRecord{}, e.err
	}
	return e.textRecord, nil
}

func newPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.Cache == nil {
		opts.Cache = newFakeCache()
	}
	if opts.Throttle == nil {
		opts.Throttle = &fakeThrottle{allow: true}
	}
	if opts.Fetcher == nil {
		opts.Fetcher = &fakeFetcher{resp: fetcher.Response{StatusCode: 200}}
	}
	opts.Logger = zap.NewNop()
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

const jsonLDPage = `<html><head>
<script type="application/ld+json">
{"@type": "JobPosting", "title": "Platform Engineer",
 "hiringOrganization": {"name": "Acme"},
 "description": "Run the platform."}
</script>
</head><body><p>Run the platform.</p></body></html>`

func TestExtractURLThrottled(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{Throttle: &fakeThrottle{allow: false, retry: 4 * time.Second}})
	_, err := p.ExtractURL(context.Background(), "https://example.com/jobs/1")
	jerr, ok := jobs.AsError(err)
	if !ok || jerr.Kind != jobs.KindRateLimited {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	if jerr.Record == nil {
		t.Fatal("throttled responses still carry a placeholder record")
	}
	if jerr.RetryAfter != 4*time.Second {
		t.Fatalf("retry after = %v, want 4s", jerr.RetryAfter)
	}
}

func TestExtractURLInvalidInput(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{})
	_, err := p.ExtractURL(context.Background(), "ftp://example.com/jobs")
	jerr, ok := jobs.AsError(err)
	if !ok || jerr.Kind != jobs.KindInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestExtractURLCacheHit(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.Set("https://example.com/jobs/1", jobs.JobRecord{Title: "Cached Engineer"})
	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200}}
	p := newPipeline(t, Options{Cache: cache, Fetcher: ff})

	rec, err := p.ExtractURL(context.Background(), "https://example.com/jobs/1?utm_source=feed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Cached Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
	if ff.visits != 0 {
		t.Fatal("cache hits must not fetch")
	}
}

func TestExtractURLBlockedSite(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	p := newPipeline(t, Options{Cache: cache})

	_, err := p.ExtractURL(context.Background(), "https://www.monster.fr/offres-demploi/data-engineer")
	jerr, ok := jobs.AsError(err)
	if !ok || jerr.Kind != jobs.KindBlockedSite {
		t.Fatalf("expected blocked site error, got %v", err)
	}
	if jerr.Record == nil || jerr.Record.Language != "fr" {
		t.Fatalf("expected partial French record, got %+v", jerr.Record)
	}
	if len(cache.entries) != 1 {
		t.Fatal("blocked records should be cached")
	}
}

func TestExtractURLStructuredData(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte(jsonLDPage)}}
	enricher := &fakeEnricher{htmlRecord: jobs.JobRecord{Location: "Lyon", Salary: "60k EUR"}}
	p := newPipeline(t, Options{Cache: cache, Fetcher: ff, Enricher: enricher})

	rec, err := p.ExtractURL(context.Background(), "https://careers.acme.example/jobs/42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Platform Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
	if rec.Location != "Lyon" || rec.Salary != "60k EUR" {
		t.Fatalf("enrichment not merged: %+v", rec)
	}
	if enricher.htmlCalls != 1 {
		t.Fatalf("enricher calls = %d", enricher.htmlCalls)
	}
	if len(cache.entries) != 1 {
		t.Fatal("successful records should be cached")
	}
}

func TestExtractURLParserWinsMerge(t *testing.T) {
	t.Parallel()

	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte(jsonLDPage)}}
	enricher := &fakeEnricher{htmlRecord: jobs.JobRecord{Title: "Wrong Title", Location: "Paris"}}
	p := newPipeline(t, Options{Fetcher: ff, Enricher: enricher})

	rec, err := p.ExtractURL(context.Background(), "https://careers.acme.example/jobs/42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Platform Engineer" {
		t.Fatalf("parser value should win the merge, got %q", rec.Title)
	}
	if rec.Location != "Paris" {
		t.Fatalf("enrichment should fill gaps, got %q", rec.Location)
	}
}

func TestExtractURLUpstreamNotFound(t *testing.T) {
	t.Parallel()

	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: http.StatusNotFound}}
	p := newPipeline(t, Options{Fetcher: ff})

	_, err := p.ExtractURL(context.Background(), "https://example.com/jobs/gone")
	jerr, ok := jobs.AsError(err)
	if !ok {
		t.Fatalf("expected pipeline error, got %v", err)
	}
	if jerr.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", jerr.Status)
	}
	if jerr.Record == nil {
		t.Fatal("expected placeholder record")
	}
}

func TestExtractURLTransportFailure(t *testing.T) {
	t.Parallel()

	ff := &fakeFetcher{err: errors.New("dial tcp: connection refused")}
	p := newPipeline(t, Options{Fetcher: ff})

	_, err := p.ExtractURL(context.Background(), "https://example.com/jobs/1")
	jerr, ok := jobs.AsError(err)
	if !ok || jerr.Kind != jobs.KindFetchFailed {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestExtractURLEnrichmentFailureKeepsParsed(t *testing.T) {
	t.Parallel()

	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte(jsonLDPage)}}
	enricher := &fakeEnricher{err: errors.New("model down")}
	p := newPipeline(t, Options{Fetcher: ff, Enricher: enricher})

	rec, err := p.ExtractURL(context.Background(), "https://careers.acme.example/jobs/42")
	if err != nil {
		t.Fatalf("parsed substance should survive enrichment failure, got %v", err)
	}
	if rec.Title != "Platform Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
}

func TestExtractURLEnrichmentFailureWithoutParse(t *testing.T) {
	t.Parallel()

	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte("<html><body>nothing here</body></html>")}}
	enricher := &fakeEnricher{err: errors.New("model down")}
	p := newPipeline(t, Options{Fetcher: ff, Enricher: enricher})

	_, err := p.ExtractURL(context.Background(), "https://example.com/jobs/1")
	if err == nil {
		t.Fatal("expected error when neither parser nor model produced anything")
	}
}

func TestExtractURLMalformedModelOutput(t *testing.T) {
	t.Parallel()

	// A model answer that is not valid JSON comes back as a placeholder
	// record carrying the problem in its error field, not as a Go error.
	cache := newFakeCache()
	ff := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte("<html><body><p>Join us!</p></body></html>")}}
	enricher := &fakeEnricher{
		htmlRecord: jobs.Placeholder("https://example.com/jobs/1", "model response was not valid JSON"),
	}
	p := newPipeline(t, Options{Cache: cache, Fetcher: ff, Enricher: enricher})

	rec, err := p.ExtractURL(context.Background(), "https://example.com/jobs/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ErrorDetail != "model response was not valid JSON" {
		t.Fatalf("error detail = %q, the caller must see the failure", rec.ErrorDetail)
	}
	if rec.Title != jobs.FallbackTitle {
		t.Fatalf("title = %q", rec.Title)
	}
	if len(cache.entries) != 0 {
		t.Fatal("placeholder-only records must not be cached")
	}
}

func TestExtractTextMalformedModelOutputNotCached(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	enricher := &fakeEnricher{
		textRecord: jobs.Placeholder(jobs.TextInputURL, "model response was not valid JSON"),
	}
	p := newPipeline(t, Options{Cache: cache, Enricher: enricher})

	rec, err := p.ExtractText(context.Background(), strings.Repeat("Data Engineer wanted at Acme. ", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ErrorDetail == "" {
		t.Fatal("error detail must survive to the caller")
	}
	if len(cache.entries) != 0 {
		t.Fatal("placeholder-only records must not be cached")
	}
}

func TestExtractTextBypassesThrottle(t *testing.T) {
	t.Parallel()

	// The admission window protects outbound fetches; pasted text never
	// touches the network and must not consume a slot.
	throttle := &fakeThrottle{allow: false}
	enricher := &fakeEnricher{textRecord: jobs.JobRecord{Title: "Data Engineer"}}
	p := newPipeline(t, Options{Throttle: throttle, Enricher: enricher})

	rec, err := p.ExtractText(context.Background(), strings.Repeat("Data Engineer wanted at Acme. ", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Data Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
	if throttle.calls != 0 {
		t.Fatalf("throttle consulted %d times, want 0", throttle.calls)
	}
}

type alwaysRender struct{}

func (alwaysRender) ShouldRender(fetcher.Response) bool { return true }

func TestExtractURLHeadlessRetry(t *testing.T) {
	t.Parallel()

	plain := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte(`<div id="__next"></div>`)}}
	rendered := &fakeFetcher{resp: fetcher.Response{StatusCode: 200, Body: []byte(jsonLDPage), UsedHeadless: true}}
	p := newPipeline(t, Options{Fetcher: plain, Headless: rendered, Detector: alwaysRender{}})

	rec, err := p.ExtractURL(context.Background(), "https://careers.acme.example/jobs/42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.visits != 1 {
		t.Fatal("expected a headless retry")
	}
	if rec.Title != "Platform Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
}

func TestExtractTextTooShort(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{Enricher: &fakeEnricher{}})
	_, err := p.ExtractText(context.Background(), "too short")
	jerr, ok := jobs.AsError(err)
	if !ok || jerr.Kind != jobs.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExtractTextCachesByHash(t *testing.T) {
	t.Parallel()

	enricher := &fakeEnricher{textRecord: jobs.JobRecord{Title: "Data Engineer", Company: "Acme"}}
	p := newPipeline(t, Options{Enricher: enricher})

	text := strings.Repeat("Data Engineer wanted at Acme. ", 5)
	rec, err := p.ExtractText(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.URL != jobs.TextInputURL {
		t.Fatalf("url = %q", rec.URL)
	}

	// Same text again, modulo surrounding whitespace, must hit the cache.
	if _, err := p.ExtractText(context.Background(), "  "+text+"\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enricher.textCalls != 1 {
		t.Fatalf("enricher calls = %d, want 1", enricher.textCalls)
	}
}
