package github

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v66/github"
)

// RetryPolicy bounds retries for hosting-API calls.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is the policy applied to all remote calls unless the
// caller overrides it: up to 3 attempts, backoff 1s -> 2s -> 4s capped at 5s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     5 * time.Second,
	}
}

// Do executes fn with exponential backoff. Permanent errors (401/403/404/
// 422 from the API) abort immediately with the original error preserved;
// 5xx responses and transport errors without a status code are retried.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	delay := p.InitialDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				log.Printf("[Retry] %s succeeded on attempt %d/%d", op, attempt, p.MaxAttempts)
			}
			return nil
		}

		if !isRetryableError(lastErr) {
			log.Printf("[Retry] %s failed with permanent error: %v", op, lastErr)
			return lastErr
		}

		if attempt == p.MaxAttempts {
			break
		}

		log.Printf("[Retry] %s attempt %d/%d failed, retrying in %v: %v", op, attempt, p.MaxAttempts, delay, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	log.Printf("[Retry] %s failed after %d attempts, giving up", op, p.MaxAttempts)
	return lastErr
}

// doWithResult is Do for functions returning a value.
func doWithResult[T any](ctx context.Context, p RetryPolicy, op string, fn func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, op, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}

// isRetryableError classifies an error as transient or permanent.
// Responses carrying a status code are judged by that code: 5xx retries,
// 401/403/404/422 (and every other 4xx) abort. Errors with no status code
// at all are transport-level failures and retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := statusFromError(err); ok {
		return code >= http.StatusInternalServerError
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// No status code: DNS failure, reset connection, EOF and friends.
	return true
}

func statusFromError(err error) (int, bool) {
	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode, true
	}

	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode, true
	}

	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode, true
	}

	return 0, false
}
