package util

import (
	"context"
	"errors"
	"time"
)

// Retry calls fn up to maxTries times until it returns a nil error.
// If maxTries <= 0, it defaults to 1. Returns the last error if all attempts fail.
func Retry[T any](maxTries int, fn func() (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErrWithContext calls fn up to maxTries times until it returns nil,
// stopping early when ctx is done or fn itself reports a context error.
func RetryErrWithContext(ctx context.Context, maxTries int, fn func(context.Context) error) error {
	if maxTries <= 0 {
		maxTries = 1
	}

	var lastErr error
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// PollPolicy bounds a polling loop. The wait before attempt n+1 is
// Interval * Multiplier^n, capped at MaxInterval.
type PollPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
	MaxAttempts int
}

// DefaultPollPolicy waits roughly ten seconds in total before giving up.
var DefaultPollPolicy = PollPolicy{
	Interval:    250 * time.Millisecond,
	MaxInterval: 2 * time.Second,
	Multiplier:  1.5,
	MaxAttempts: 10,
}

// Delay returns the wait after the given zero-based attempt.
func (p PollPolicy) Delay(attempt int) time.Duration {
	d := float64(p.Interval)
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for range attempt {
		d *= mult
		if p.MaxInterval > 0 && d >= float64(p.MaxInterval) {
			return p.MaxInterval
		}
	}
	if p.MaxInterval > 0 && time.Duration(d) > p.MaxInterval {
		return p.MaxInterval
	}
	return time.Duration(d)
}

// Poll calls fn until it succeeds, the attempts in policy are used up, or ctx
// is done. Unlike RetryErrWithContext it sleeps between attempts, so it is the
// tool for waiting on state that becomes ready asynchronously.
func Poll[T any](ctx context.Context, policy PollPolicy, fn func(context.Context) (T, error)) (T, error) {
	maxTries := policy.MaxAttempts
	if maxTries <= 0 {
		maxTries = 1
	}
	var zero T
	var lastErr error
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
		if i == maxTries-1 {
			break
		}
		if err := sleep(ctx, policy.Delay(i)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
