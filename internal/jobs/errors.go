package jobs

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies a pipeline failure.
type Kind string

// Failure taxonomy. Every domain failure is converted into an *Error at its
// origin; only truly unexpected failures surface as generic 500s.
const (
	KindInvalidInput     Kind = "invalid_input"
	KindBlockedSite      Kind = "blocked_site"
	KindFetchFailed      Kind = "fetch_failed"
	KindParseFailure     Kind = "parse_failure"
	KindEnrichmentFailed Kind = "enrichment_failed"
	KindRateLimited      Kind = "rate_limited"
)

// Error is a structured pipeline failure. It carries the HTTP status to
// surface and a best-effort partial record so responses are always
// displayable.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Record  *JobRecord
	// RetryAfter, when positive, tells the caller how long until the
	// admission window rolls over.
	RetryAfter time.Duration
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds a pipeline error for the given kind with its default
// HTTP status.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Status: statusFor(kind), Message: message}
}

// WithStatus overrides the HTTP status, used to mirror upstream fetch codes.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithRecord attaches the partial record accompanying the failure.
func (e *Error) WithRecord(rec JobRecord) *Error {
	e.Record = &rec
	return e
}

// WithRetryAfter attaches the wait until the next admission window.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// AsError extracts a pipeline error from an error chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func statusFor(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindBlockedSite:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
