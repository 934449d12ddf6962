package polar

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrMalformedResponse wraps a 2xx response whose body could not be decoded.
// Asking again returns the same body, so it is never retried.
var ErrMalformedResponse = errors.New("malformed response")

// RetryPolicy bounds how often a failed read is reattempted.
type RetryPolicy struct {
	Attempts int           // total attempts including the first
	Backoff  time.Duration // delay before the second attempt; doubles after each failure
}

// DefaultRetry allows three attempts starting at a 500ms backoff.
func DefaultRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}
}

// NoRetry sends a request exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

// backOff builds the schedule: Backoff, 2*Backoff, 4*Backoff... with no jitter,
// stopping after Attempts-1 retries or when ctx is done.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := max(p.Attempts, 1)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Backoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = p.Backoff << (attempts - 1)
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts
// are exhausted. The last error is returned. attempt starts at 1.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn(attempt)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx))
}

// Retryable reports whether err is worth another attempt. Client errors other
// than 429, malformed bodies and cancellations are final.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return apiErr.StatusCode >= 500
	}
	return true
}
