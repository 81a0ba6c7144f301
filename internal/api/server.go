// Package api exposes the HTTP interface for the extraction service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkardas/job-extractor/internal/id/uuid"
	"github.com/mkardas/job-extractor/internal/jobs"
	"github.com/mkardas/job-extractor/internal/telemetry"
)

// Extractor is the pipeline surface the HTTP layer depends on.
type Extractor interface {
	ExtractURL(ctx context.Context, rawURL string) (jobs.JobRecord, error)
	ExtractText(ctx context.Context, text string) (jobs.JobRecord, error)
}

// Server wires HTTP handlers to the extraction pipeline.
type Server struct {
	router    chi.Router
	extractor Extractor
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(extractor Extractor, logger *zap.Logger, requestTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	s := &Server{
		extractor: extractor,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.extractURL)
		r.Post("/extract/text", s.extractText)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The pipeline holds no connections that could go stale.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type extractURLRequest struct {
	URL string `json:"url"`
}

type extractTextRequest struct {
	Text string `json:"text"`
}

// envelope is the response shape for both extraction endpoints. Data is
// present on every response, including failures, so clients always have a
// record to render.
type envelope struct {
	Success bool            `json:"success"`
	Data    *jobs.JobRecord `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) extractURL(w http.ResponseWriter, r *http.Request) {
	var req extractURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeFailure(w, http.StatusBadRequest, "request body must be JSON with a url field",
			jobs.Placeholder("", "missing url"))
		return
	}

	record, err := s.extractor.ExtractURL(r.Context(), req.URL)
	if err != nil {
		s.writeExtractionError(w, req.URL, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: &record})
}

func (s *Server) extractText(w http.ResponseWriter, r *http.Request) {
	var req extractTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		s.writeFailure(w, http.StatusBadRequest, "request body must be JSON with a text field",
			jobs.Placeholder(jobs.TextInputURL, "missing text"))
		return
	}

	record, err := s.extractor.ExtractText(r.Context(), req.Text)
	if err != nil {
		s.writeExtractionError(w, jobs.TextInputURL, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: &record})
}

// writeExtractionError maps pipeline errors onto HTTP statuses. Every
// failure still ships a partial or placeholder record.
func (s *Server) writeExtractionError(w http.ResponseWriter, sourceURL string, err error) {
	if jerr, ok := jobs.AsError(err); ok {
		record := jerr.Record
		if record == nil {
			placeholder := jobs.Placeholder(sourceURL, jerr.Message)
			record = &placeholder
		}
		if jerr.RetryAfter > 0 {
			seconds := int64((jerr.RetryAfter + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
		}
		s.writeFailure(w, jerr.Status, jerr.Message, *record)
		return
	}
	s.logger.Error("extraction failed", zap.String("url", sourceURL), zap.Error(err))
	s.writeFailure(w, http.StatusInternalServerError, "extraction failed",
		jobs.Placeholder(sourceURL, "internal error"))
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, message string, record jobs.JobRecord) {
	writeJSON(w, status, envelope{Success: false, Error: message, Data: &record})
}

var requestIDs = uuid.NewGenerator()

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, err := requestIDs.NewID()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeJSON(w, http.StatusInternalServerError,
						envelope{Success: false, Error: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}
