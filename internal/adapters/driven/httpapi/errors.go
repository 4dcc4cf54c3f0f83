package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// maxMessageLen caps how much of a non-JSON error body ends up in messages.
const maxMessageLen = 200

// APIError is a non-2xx response from an upstream API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string

	// RetryAfter is parsed from the Retry-After header when present.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (HTTP %d)", e.Provider, e.Unwrap().Error(), e.StatusCode)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	return b.String()
}

// Unwrap maps the status code onto a domain sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized,
		e.StatusCode == http.StatusPaymentRequired,
		e.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	default:
		return domain.ErrUpstream
	}
}

// Retryable reports whether repeating the request may succeed.
// Only server errors qualify.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// IsRateLimited checks if the error indicates upstream throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// IsUnauthorized checks if the error indicates rejected credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newAPIError(provider string, resp *http.Response, body []byte) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// errorMessage pulls a human-readable message out of an error body.
// Providers disagree on the shape, so several common paths are tried.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "message", "detail"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
		return ""
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
