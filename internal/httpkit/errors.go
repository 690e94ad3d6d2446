/**
 * @description
 * Typed error kinds shared by every Polymarket HTTP client (catalog, CLOB,
 * trades, price-history). Generalizes the status-code branching and
 * HTML-WAF-page detection the CLOB client used to duplicate per call site
 * into one reusable classifier.
 *
 * @dependencies
 * - errors, fmt
 */

package httpkit

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// APIError represents a non-2xx response the upstream actually answered with.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Body)
}

// ValidationError represents a locally-detected malformed request or response
// shape, e.g. unparsable JSON or a missing required field.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Issues)
}

// NetworkError represents a transport-level failure: connection refused, DNS
// failure, context deadline exceeded while the request was in flight.
type NetworkError struct {
	IsTimeout bool
	Cause     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (timeout=%v): %v", e.IsTimeout, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// RateLimitError represents a 429 / throttling response.
type RateLimitError struct {
	RetryAfter time.Duration
	ResetAt    *time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

// Retryable classifies an error produced by this package (or wrapping one of
// its kinds) as safe to retry on the next scheduled tick.
//
//   - RateLimitError  -> true, caller should honor RetryAfter
//   - NetworkError    -> true
//   - APIError        -> true iff status is 5xx, 408, or 429
//   - ValidationError -> false
//   - anything else   -> false (unclassified errors are not assumed retryable)
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		if ae.Status == 408 || ae.Status == 429 {
			return true
		}
		return ae.Status >= 500 && ae.Status < 600
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return false
	}
	return false
}

// looksLikeHTML flags a WAF/error-page body so callers surface a clearer
// APIError instead of failing JSON decode with a confusing message.
func looksLikeHTML(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("<!DOCTYPE html")) || bytes.HasPrefix(trimmed, []byte("<html")) {
		return true
	}
	return bytes.Contains(trimmed, []byte("Cloudflare"))
}
