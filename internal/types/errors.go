package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrMaxRetries      = errors.New("max retries exceeded")
	ErrEmptyResponse   = errors.New("empty response body")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrUnsupportedSite = errors.New("no module supports this site")
	ErrUnsupportedKind = errors.New("no module supports this content kind")
	ErrScrapeAborted   = errors.New("scrape aborted")
)

// FetchError wraps errors that occur during fetching. A StatusCode of 0 with
// a non-nil Err is a transport-level failure; a non-zero StatusCode is a
// well-formed non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRateLimited reports whether this failure is an HTTP 429. Rate limiting
// is handled by an unbounded wait rather than the bounded retry budget.
func (e *FetchError) IsRateLimited() bool { return e.StatusCode == 429 }

// ParseError wraps errors that occur while extracting entities from markup.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SkipError marks a unit of work (a single post, a single comment) that was
// dropped without failing the enclosing scrape. It is the Skip arm of the
// per-operation result: callers distinguish it from fatal errors with IsSkip.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skipped: %s: %v", e.Reason, e.Err)
	}
	return "skipped: " + e.Reason
}

func (e *SkipError) Unwrap() error { return e.Err }

// IsSkip reports whether err marks a skipped unit of work.
func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}
