// Package retry wraps fallible operations with capped exponential backoff.
package retry

import (
	"time"
)

// Policy configures a retry loop. It is stateless configuration; the same
// Policy may be shared across goroutines.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	// MinWait is the sleep before the first retry.
	MinWait time.Duration
	// MaxWait caps the backoff schedule.
	MaxWait time.Duration
	// Retryable reports whether an error is worth retrying. A nil predicate
	// retries every error.
	Retryable func(error) bool
}

// Wait returns the backoff for the given retry index: min(MinWait << i,
// MaxWait). Index 0 is the wait before the first retry.
func (p Policy) Wait(i int) time.Duration {
	if i > 30 {
		i = 30
	}
	w := p.MinWait << uint(i)
	if w > p.MaxWait || w <= 0 {
		w = p.MaxWait
	}
	return w
}

// Do invokes fn up to MaxAttempts times, sleeping between attempts per the
// backoff schedule. The last error is returned unchanged after the final
// attempt. Non-retryable errors return immediately. The sleep is blocking;
// there is no cancellation once the loop starts.
func Do(p Policy, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt < p.MaxAttempts-1 {
			time.Sleep(p.Wait(attempt))
		}
	}
	return lastErr
}
