package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkardas/job-extractor/internal/jobs"
)

type fakeExtractor struct {
	urlRecord  jobs.JobRecord
	textRecord jobs.JobRecord
	err        error
}

func (f *fakeExtractor) ExtractURL(_ context.Context, _ string) (jobs.JobRecord, error) {
	if f.err != nil {
		return jobs.JobRecord{}, f.err
	}
	return f.urlRecord, nil
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ string) (jobs.JobRecord, error) {
	if f.err != nil {
		return jobs.JobRecord{}, f.err
	}
	return f.textRecord, nil
}

func newTestServer(ext Extractor) *Server {
	return NewServer(ext, zap.NewNop(), time.Minute)
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v\n%s", err, rr.Body.String())
	}
	return rr, env
}

func TestExtractURLSuccess(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{urlRecord: jobs.JobRecord{
		Title:   "Backend Engineer",
		Company: "Acme",
		URL:     "https://example.com/jobs/1",
	}}
	s := newTestServer(ext)

	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract", `{"url": "https://example.com/jobs/1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !env.Success || env.Data == nil || env.Data.Title != "Backend Engineer" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExtractURLMissingField(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeExtractor{})
	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.Success || env.Error == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data == nil {
		t.Fatal("failures must still carry a record")
	}
}

func TestExtractURLBlockedSite(t *testing.T) {
	t.Parallel()

	partial := jobs.JobRecord{Title: "Seo Specialist", Company: "Company (blocked site)", Language: "fr"}
	ext := &fakeExtractor{err: jobs.NewError(jobs.KindBlockedSite,
		"this site blocks automated extraction").WithRecord(partial)}
	s := newTestServer(ext)

	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract", `{"url": "https://www.monster.fr/x"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.Data == nil || env.Data.Title != "Seo Specialist" {
		t.Fatalf("expected partial record, got %+v", env.Data)
	}
}

func TestExtractURLRateLimited(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{err: jobs.NewError(jobs.KindRateLimited, "too many requests, slow down").
		WithRetryAfter(3500 * time.Millisecond)}
	s := newTestServer(ext)

	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract", `{"url": "https://example.com/jobs/1"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.Data == nil {
		t.Fatal("rate limited responses still carry a placeholder record")
	}
	if got := rr.Header().Get("Retry-After"); got != "4" {
		t.Fatalf("Retry-After = %q, want seconds rounded up", got)
	}
}

func TestExtractURLUnknownError(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{err: context.DeadlineExceeded}
	s := newTestServer(ext)

	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract", `{"url": "https://example.com/jobs/1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.Success || env.Data == nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExtractTextSuccess(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{textRecord: jobs.JobRecord{Title: "Data Engineer", URL: jobs.TextInputURL}}
	s := newTestServer(ext)

	rr, env := doJSON(t, s, http.MethodPost, "/v1/extract/text", `{"text": "Data Engineer wanted at Acme, apply now."}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.Data == nil || env.Data.URL != jobs.TextInputURL {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExtractTextMissingField(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeExtractor{})
	rr, _ := doJSON(t, s, http.MethodPost, "/v1/extract/text", `{"text": ""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeExtractor{})
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeExtractor{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}
