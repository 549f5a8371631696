package httpretry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func rateLimitedServer(t *testing.T, failures int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGet_RetriesRateLimitThenSucceeds(t *testing.T) {
	srv, calls := rateLimitedServer(t, 2)
	rec := &recordingSleep{}
	c := New(WithInitialDelay(100*time.Millisecond), WithSleep(rec.sleep))

	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.waits)
}

func TestGet_ReturnsLastRateLimitWithoutFinalSleep(t *testing.T) {
	srv, calls := rateLimitedServer(t, 10)
	rec := &recordingSleep{}
	c := New(WithMaxAttempts(3), WithInitialDelay(time.Second), WithSleep(rec.sleep))

	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestGet_OtherStatusReturnedImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	rec := &recordingSleep{}

	resp, err := New(WithSleep(rec.sleep)).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, rec.waits)
}

func TestGet_SendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "token_abc" || pass != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := New().Get(context.Background(), srv.URL, &Auth{Username: "token_abc"})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGet_ConnectionRefusedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &recordingSleep{}
	_, err := New(WithMaxAttempts(2), WithInitialDelay(time.Millisecond), WithSleep(rec.sleep)).Get(context.Background(), url, nil)
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Retryable)
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	assert.Len(t, rec.waits, 1)
}

func TestGet_BadURLIsFatal(t *testing.T) {
	rec := &recordingSleep{}
	_, err := New(WithSleep(rec.sleep)).Get(context.Background(), "unsupported://nowhere", nil)
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.False(t, terr.Retryable)
	assert.Empty(t, rec.waits)
}

func TestGet_CancelledDuringBackoff(t *testing.T) {
	srv, calls := rateLimitedServer(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	c := New(WithInitialDelay(time.Hour), WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}))

	_, err := c.Get(ctx, srv.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestWithClientCertificate_MissingFiles(t *testing.T) {
	c := New(WithClientCertificate("/nonexistent/cert.pem", "/nonexistent/key.pem"))
	_, err := c.Get(context.Background(), "https://example.invalid", nil)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.False(t, terr.Retryable)
}
