// Package httpapi is the shared JSON-over-HTTP client used by upstream adapters.
// It owns throttling, retries and the mapping of HTTP failures onto domain errors.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/logger"
)

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 16 << 20

// Config holds configuration for a Client.
type Config struct {
	// Provider names the upstream in errors and logs (e.g. "exa").
	Provider string

	// BaseURL is prefixed to every request path.
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the token bucket.
	RequestsPerSecond float64
	Burst             int

	// Retry controls backoff for transient failures.
	Retry RetryPolicy

	// Authorize sets credentials on every request.
	Authorize func(h http.Header)

	// UserAgent is sent when non-empty.
	UserAgent string

	// HTTPClient overrides the underlying client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client sends JSON requests to one upstream API.
type Client struct {
	provider  string
	baseURL   string
	http      *http.Client
	limiter   *RateLimiter
	retry     RetryPolicy
	authorize func(h http.Header)
	userAgent string
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		provider:  cfg.Provider,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      hc,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		retry:     NewRetryPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay),
		authorize: cfg.Authorize,
		userAgent: cfg.UserAgent,
	}
}

// Provider returns the upstream name.
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the URL prefix requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post sends payload as JSON and returns the response body.
func (c *Client) Post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do sends a request with retries and returns the 2xx response body.
// Failures wrap the domain sentinels: *APIError for HTTP errors,
// domain.ErrTimeout for deadlines and domain.ErrUpstream for transport errors.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	log := logger.Component("httpapi")

	var out []byte
	err := c.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			log.Debug().
				Str("provider", c.provider).
				Str("path", path).
				Int("attempt", attempt).
				Msg("retrying request")
		}
		var err error
		out, err = c.send(ctx, method, path, body)
		return err
	})
	return out, err
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", c.provider, err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.authorize != nil {
		c.authorize(req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(c.provider, resp, data)
	}
	return data, nil
}

// transportError classifies a failure that produced no HTTP status.
func (c *Client) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w: %w", c.provider, domain.ErrTimeout, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %w", c.provider, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", c.provider, domain.ErrUpstream, err)
}
