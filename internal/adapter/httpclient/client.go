// Package httpclient builds the outbound HTTP client shared by the
// marketplace and flight adapters: pooled transport, request timeout, and
// bounded retry on transient failures.
package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RetryPolicy bounds the retry loop around one logical request.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries twice after the first attempt with a doubling
// delay between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// New returns an HTTP client with a pooled transport, the given per-request
// timeout, and retrying behavior per policy.
func New(timeout time.Duration, policy RetryPolicy, logger *slog.Logger) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			next:   transport,
			policy: policy,
			logger: logger,
		},
	}
}

// retryTransport retries transport failures and 5xx responses. A request
// whose body cannot be replayed through GetBody is sent exactly once. The
// final response, including a final 5xx, is returned to the caller unread.
type retryTransport struct {
	next   http.RoundTripper
	policy RetryPolicy
	logger *slog.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempts := t.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if req.Body != nil && req.GetBody == nil {
		attempts = 1
	}

	delay := t.policy.BaseDelay
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			req.Body = body
		}

		resp, err = t.next.RoundTrip(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if attempt == attempts {
			break
		}

		if err != nil {
			t.logger.Warn("request failed, retrying",
				"path", req.URL.Path, "attempt", attempt, "error", err)
		} else {
			t.logger.Warn("server error, retrying",
				"path", req.URL.Path, "attempt", attempt, "status", resp.StatusCode)
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		if sleepErr := sleepWithContext(req.Context(), delay); sleepErr != nil {
			if err != nil {
				return nil, err
			}
			return nil, sleepErr
		}
		delay = nextDelay(delay, t.policy.MaxDelay)
	}

	return resp, err
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
