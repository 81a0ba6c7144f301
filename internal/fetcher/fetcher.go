// Package fetcher defines the page-retrieval contract shared by the plain
// HTTP and headless implementations.
package fetcher

import (
	"context"
	"net/http"
	"time"
)

// Request describes a single page fetch.
type Request struct {
	URL     string
	Headers http.Header
}

// Response carries the fetched document. StatusCode is always populated,
// including for non-2xx results; an error return is reserved for transport
// failures where no response exists at all.
type Response struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}
