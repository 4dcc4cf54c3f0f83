package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// Default retry settings.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// RetryPolicy defines bounded exponential backoff for transient failures.
type RetryPolicy struct {
	// MaxAttempts includes the first try.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt. It doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration
}

// NewRetryPolicy fills unset fields with defaults.
func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, MaxDelay: maxDelay}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, fails permanently, attempts run out or
// ctx is done. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(attempt)
		if err == nil || !Retryable(err) || attempt == attempts {
			return err
		}
		if !sleep(ctx, p.Delay(attempt)) {
			return err
		}
	}
	return err
}

// Retryable reports whether err is worth another attempt: server errors,
// transport failures and timeouts. Throttling and auth failures are not.
func Retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, domain.ErrTimeout) || errors.Is(err, domain.ErrUpstream)
}

// sleep waits for d and reports false if ctx finished first.
func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
