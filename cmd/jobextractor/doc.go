// Package main hosts the job extraction service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and two extraction endpoints. POST /v1/extract takes a
//     posting URL; POST /v1/extract/text takes pasted posting text. Every response, success or failure, carries a
//     record so clients always have something to render.
//   - Pipeline: internal/extractor.Pipeline runs admission throttling, URL normalization, the result cache, site
//     classification, fetch, parse, and language model enrichment in order. Blocked boards short-circuit to a
//     URL-derived partial record without touching the network.
//   - Fetch: a Colly-based fetcher with rotating browser headers and per-host pacing does the plain path; a heuristic
//     detector promotes unrendered single-page-app shells to a headless Chromedp fetch when enabled.
//   - Parsing: per-board parsers (LinkedIn, Indeed, Welcome to the Jungle) prefer schema.org JobPosting metadata and
//     fall back to board-specific selectors plus heading-section scanning in English and French. Unknown boards get
//     the structured-data path alone.
//   - Enrichment: an OpenAI-compatible model fills record gaps via langchaingo. Parser output wins every merge
//     conflict; the model only fills what parsing left empty.
//   - Configuration & plumbing: Viper populates config from env/files with the JOBEXTRACTOR prefix; zap provides
//     structured logging; Prometheus metrics are exported via middleware and the /metrics handler.
//
// Operational notes:
//   - Results are cached in memory with a TTL and a hard capacity; a janitor goroutine sweeps expired entries. The
//     cache and throttle are process-local, so horizontal scaling multiplies both.
//   - The process reacts to SIGTERM for graceful drain: the HTTP server stops accepting work and in-flight
//     extractions finish within the request timeout.
//
// Quick checklist:
//   - Configure env vars: JOBEXTRACTOR_SERVER_PORT, JOBEXTRACTOR_ENRICH_ENABLED, JOBEXTRACTOR_ENRICH_API_KEY,
//     JOBEXTRACTOR_HEADLESS_ENABLED, JOBEXTRACTOR_FETCH_TIMEOUT_SECONDS.
//   - Run locally: go run ./cmd/jobextractor -config config.yaml (or rely solely on env overrides).
package main
