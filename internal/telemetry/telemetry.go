// Package telemetry exposes Prometheus metrics for the extraction pipeline.
package telemetry

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_extractions_total",
			Help: "Total number of extraction attempts, labeled by site and outcome.",
		},
		[]string{"site", "outcome"},
	)

	fetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractor_fetch_duration_seconds",
			Help:    "Histogram of page fetch latencies, labeled by site and mode.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"site", "mode"},
	)

	cacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_cache_events_total",
			Help: "Cache lookups, labeled by result (hit or miss).",
		},
		[]string{"result"},
	)

	throttleRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "extractor_throttle_rejections_total",
			Help: "Requests rejected by the global request throttle.",
		},
	)

	enrichmentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_enrichment_requests_total",
			Help: "Language model enrichment calls, labeled by status.",
		},
		[]string{"status"},
	)

	politenessDelaysSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractor_politeness_delays_seconds",
			Help:    "Histogram of per-host pacing wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"host"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns the standard Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}
		ObserveHTTPRequest(r.Method, routePattern, ww.statusCode, time.Since(start))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// SanitizeSite extracts the hostname from a URL.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveExtraction records the outcome of one extraction attempt.
func ObserveExtraction(site, outcome string) {
	extractionsTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveFetch records the latency of a page fetch. Mode is "plain" or
// "headless".
func ObserveFetch(site, mode string, duration time.Duration) {
	fetchDurationSeconds.WithLabelValues(SanitizeSite(site), mode).Observe(duration.Seconds())
}

// ObserveCacheHit records a cache lookup that found a live entry.
func ObserveCacheHit() {
	cacheEventsTotal.WithLabelValues("hit").Inc()
}

// ObserveCacheMiss records a cache lookup that found nothing usable.
func ObserveCacheMiss() {
	cacheEventsTotal.WithLabelValues("miss").Inc()
}

// ObserveThrottleRejection records a request turned away by the throttle.
func ObserveThrottleRejection() {
	throttleRejectionsTotal.Inc()
}

// ObserveEnrichment records one language model call by status
// ("ok", "malformed", "error").
func ObserveEnrichment(status string) {
	enrichmentRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records metrics for an HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePolitenessDelay records the duration of a per-host pacing wait.
func ObservePolitenessDelay(host string, duration time.Duration) {
	politenessDelaysSeconds.WithLabelValues(host).Observe(duration.Seconds())
}
