package httpapi

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

const (
	// DefaultRequestsPerSecond is the proactive throttle rate per provider.
	DefaultRequestsPerSecond = 5

	// DefaultBurst is the token bucket size.
	DefaultBurst = 5
)

// RateLimiter throttles outgoing requests with a token bucket.
// It is safe for concurrent use.
type RateLimiter struct {
	bucket *rate.Limiter
}

// NewRateLimiter creates a limiter. A non-positive rate disables throttling.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return &RateLimiter{bucket: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a request may be sent.
// It fails with domain.ErrTimeout if ctx ends first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%w: waiting for rate limiter: %w", domain.ErrTimeout, err)
	}
	return nil
}

// Limit returns the configured rate.
func (r *RateLimiter) Limit() rate.Limit {
	return r.bucket.Limit()
}
