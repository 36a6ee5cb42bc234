package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth retrying, such as a record source
// that is briefly unreachable.
type RetryableError struct{ Err error }

// Retryable marks err as retryable. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries a function whose failures are marked [Retryable],
// doubling the delay after each attempt. Zero fields take the values of
// [DefaultBackoff].
type Backoff struct {
	Attempts int
	Delay    time.Duration
	// OnRetry is called before each wait with the failed attempt (1-based).
	OnRetry func(attempt int, err error)
}

// DefaultBackoff makes three attempts, waiting 1s then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, fails without the retryable mark, the
// attempts run out or ctx is done. The marker is stripped from the
// returned error.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	b = b.withDefaults()
	attempts, delay := b.Attempts, b.Delay

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if i == attempts {
			break
		}
		if b.OnRetry != nil {
			b.OnRetry(i, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func (b Backoff) withDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Delay <= 0 {
		b.Delay = DefaultBackoff.Delay
	}
	return b
}
