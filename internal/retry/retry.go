package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Fetcher is a decorator that retries transient failures with exponential
// backoff and jitter before delegating to the wrapped model.Fetcher.
type Fetcher struct {
	inner      model.Fetcher
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewFetcher wraps a fetcher with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewFetcher(inner model.Fetcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Fetch attempts the fetch, retrying on transient errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.inner.Fetch(ctx, url)
	if err == nil {
		return body, nil
	}

	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		delay := f.backoffDelay(attempt, lastErr)

		f.logger.Warn("retrying after transient error",
			"url", url,
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		body, err = f.inner.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (f *Fetcher) backoffDelay(attempt int, err error) time.Duration {
	var fetchErr *model.FetchError
	if errors.As(err, &fetchErr) && fetchErr.RetryAfter > 0 {
		return fetchErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := f.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation — never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Unfetchable URLs never get better.
	var parseErr *model.ParseError
	if errors.As(err, &parseErr) {
		return false
	}

	var fetchErr *model.FetchError
	if errors.As(err, &fetchErr) {
		// No response at all (network, DNS) — retryable.
		if fetchErr.StatusCode == 0 {
			return true
		}
		// 429 Too Many Requests — retryable.
		if fetchErr.StatusCode == 429 {
			return true
		}
		// 5xx — retryable.
		if fetchErr.StatusCode >= 500 {
			return true
		}
		// 4xx (not 429) — not retryable.
		return false
	}

	return true
}
