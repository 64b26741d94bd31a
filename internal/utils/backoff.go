package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrPermanent wraps errors that must not be retried.
type ErrPermanent struct{ Err error }

func (e ErrPermanent) Error() string { return e.Err.Error() }
func (e ErrPermanent) Unwrap() error { return e.Err }

type Backoff struct {
	base       time.Duration
	maxRetries int
	jitter     time.Duration
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries, jitter: base + base/2}
}

// Do calls fn until it succeeds, returns a permanent error, or retries run out.
// Waits grow as base*2^i plus random jitter.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		var perm ErrPermanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if i == b.maxRetries {
			break
		}
		t := time.Duration(1<<i) * b.base
		if b.jitter > 0 {
			t += time.Duration(rand.Int63n(int64(b.jitter)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t):
		}
	}
	return err
}
