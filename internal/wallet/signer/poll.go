package signer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PollPolicy is a bounded retry budget with a fixed delay between attempts.
// A nil Sleep waits on a timer; tests inject their own.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Sleep       SleepFunc
}

// CheckFunc inspects the remote operation once. It returns done=true on terminal success;
// a non-nil error stops polling immediately.
type CheckFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poll runs check up to MaxAttempts times, waiting Interval between attempts.
// Exhausting the budget returns ErrSigningTimeout.
func (p PollPolicy) Poll(ctx context.Context, check CheckFunc) error {
	pending := errors.Wrapf(ErrSigningTimeout, "gave up after %d attempts", p.MaxAttempts)
	if p.MaxAttempts < 1 {
		return pending
	}

	var sleepErr error
	backoff := p.backoff(ctx, &sleepErr)

	attempt := 0
	err := retry.Do(ctx, retry.WithMaxRetries(uint64(p.MaxAttempts-1), backoff), func(ctx context.Context) error {
		attempt++

		done, err := check(ctx, attempt)
		if err != nil {
			return err
		}
		if !done {
			return retry.RetryableError(pending)
		}

		return nil
	})

	if sleepErr != nil {
		return errors.Wrap(sleepErr, "polling interrupted")
	}

	return err
}

// backoff yields Interval on every step. With an injected Sleep the wait happens
// inside the backoff and go-retry's own timer gets a zero delay.
func (p PollPolicy) backoff(ctx context.Context, sleepErr *error) retry.Backoff {
	if p.Sleep == nil {
		return retry.BackoffFunc(func() (time.Duration, bool) {
			return p.Interval, false
		})
	}

	return retry.BackoffFunc(func() (time.Duration, bool) {
		if err := p.Sleep(ctx, p.Interval); err != nil {
			*sleepErr = err
			return 0, true
		}

		return 0, false
	})
}

// NoSleep returns immediately. Used by tests to run a full retry budget instantly.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
