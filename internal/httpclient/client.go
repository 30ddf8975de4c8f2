package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config holds attempt and timeout configuration.
type Config struct {
	// MaxAttempts is the total number of tries per request. One means the
	// first failure is returned as is.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Timeout bounds a single attempt. Zero leaves the transport default.
	Timeout time.Duration
}

// DefaultConfig returns a single-attempt configuration without a timeout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 1,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Client wraps http.Client with bounded attempts for transient failures.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client around a caller-supplied http.Client.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{
		http:   httpClient,
		config: cfg,
		logger: logger,
	}
}

// Do executes an HTTP request. Idempotent requests are tried again on 429,
// 502, 503, 504 and network errors while attempts remain; any other outcome
// is returned to the caller unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var (
		lastErr  error
		lastResp *http.Response
		delays   = c.newBackOff()
	)

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(req.Context(), attempt, delays.NextBackOff(), lastResp, req.URL.Redacted()); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr, lastResp = err, nil
			if !retryable(req.Method) {
				break
			}
			continue
		}

		if !retryable(req.Method) || !transientStatus(resp.StatusCode) || attempt == c.config.MaxAttempts {
			return resp, nil
		}

		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Redacted())
		lastResp = resp
		_ = resp.Body.Close()
	}

	if c.config.MaxAttempts == 1 {
		return nil, fmt.Errorf("request failed: %w", lastErr)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

func (c *Client) wait(ctx context.Context, attempt int, delay time.Duration, lastResp *http.Response, url string) error {
	if d := retryAfter(lastResp); d > delay {
		delay = d
	}
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	c.logger.Debug("retrying request",
		slog.Int("attempt", attempt),
		slog.String("delay", delay.String()),
		slog.String("url", url),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// retryable reports whether a request can be sent twice without side effects.
// Requests with a body are never replayed.
func retryable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// newBackOff returns the delay schedule of one request: BaseDelay doubling
// per retry up to MaxDelay, with 20% jitter.
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.config.BaseDelay,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         c.config.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
