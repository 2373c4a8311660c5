package client

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy controls retry behavior for API calls
type RetryPolicy struct {
	MaxRetries  int           //max retry attempts
	BaseBackoff time.Duration //initial backoff duration
	MaxBackoff  time.Duration // upper bound on backoff
	JitterFn    func(time.Duration) time.Duration
}

// DefaultRetryPolicy retries three times starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		BaseBackoff: 100 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
		JitterFn:    func(d time.Duration) time.Duration { return d / 2 }, //default jitter:50%
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// unwrapPermanent strips the Permanent marker from err.
func unwrapPermanent(err error) error {
	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}

// Retry executes fn with retries, backoff, and cancellation support.
//
// fn must return nil on success.
// Errors wrapped with Permanent stop immediately and are returned unwrapped;
// any other error is retried.
func Retry(
	ctx context.Context,
	policy RetryPolicy,
	fn func() error,
) error {

	var attempt int
	var backoff = policy.BaseBackoff

	for {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		attempt++
		if attempt > policy.MaxRetries {
			return err
		}

		delay := backoff
		if policy.JitterFn != nil {
			delay += policy.JitterFn(backoff)
		}
		if delay > policy.MaxBackoff {
			delay = policy.MaxBackoff
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			backoff *= 2
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
