// Package httpretry wraps net/http with the retry policy used for provider APIs:
// HTTP 429 and transient transport failures are retried with exponential backoff,
// every other outcome is handed back to the caller.
package httpretry

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 10 * time.Second
)

// Auth is HTTP basic auth. Teller sends the access token as the username.
type Auth struct {
	Username string
	Password string
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	URL       string
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{apperrors.ErrProviderUnavailable, e.Err}
}

// Client performs provider requests with the retry policy.
type Client struct {
	httpClient   *http.Client
	maxAttempts  int
	initialDelay time.Duration
	sleep        SleepFunc
	certErr      error
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts bounds the total number of attempts per call.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the wait before the second attempt; it doubles afterwards.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.initialDelay = d
		}
	}
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per attempt timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithClientCertificate presents the given certificate pair on every TLS handshake.
// Empty paths leave the client unchanged. A pair that cannot be loaded makes every
// request fail with a non-retryable TransportError.
func WithClientCertificate(certFile, keyFile string) Option {
	return func(c *Client) {
		if certFile == "" || keyFile == "" {
			return
		}
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			c.certErr = fmt.Errorf("failed to load client certificate: %w", err)
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		c.httpClient.Transport = transport
	}
}

// New creates a Client with the default policy of 3 attempts and a 10 second initial delay.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		maxAttempts:  DefaultMaxAttempts,
		initialDelay: DefaultInitialDelay,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get performs a GET with optional basic auth.
func (c *Client) Get(ctx context.Context, url string, auth *Auth) (*http.Response, error) {
	return c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if auth != nil {
			req.SetBasicAuth(auth.Username, auth.Password)
		}
		return req, nil
	})
}

// Do sends the request produced by build, rebuilding it for each attempt.
// The response of the last attempt is returned even when its status is 429; the
// caller owns its body.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if c.certErr != nil {
		return nil, &TransportError{Err: c.certErr}
	}

	delay := c.initialDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		url := req.URL.Redacted()

		resp, err := c.httpClient.Do(req)
		last := attempt == c.maxAttempts
		if err != nil {
			terr := &TransportError{URL: url, Retryable: isRetryable(ctx, err), Err: err}
			if !terr.Retryable || last {
				return nil, terr
			}
			lastErr = terr
			logger.Warn("Transient transport error, retrying",
				slog.String("url", url), slog.Int("attempt", attempt), slog.Duration("wait", delay), slog.String("error", err.Error()))
		} else {
			if resp.StatusCode != http.StatusTooManyRequests || last {
				return resp, nil
			}
			drain(resp)
			logger.Warn("Rate limited by provider, retrying",
				slog.String("url", url), slog.Int("attempt", attempt), slog.Duration("wait", delay))
		}

		if err := c.sleep(ctx, delay); err != nil {
			return nil, &TransportError{URL: url, Err: err}
		}
		delay *= 2
	}
	// Only reached when maxAttempts is not positive.
	return nil, lastErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
