// Package retry wraps fallible external calls in a bounded retry loop with
// classified backoff. Quota failures wait out a fixed provider cooldown,
// transient failures back off exponentially with jitter, and everything
// else terminates immediately. The executor is call-site agnostic: the
// injected Classifier is its only coupling to a specific API.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Class is the failure classification assigned to one failed attempt.
type Class int

const (
	// Fatal failures are not retried: bad credentials, malformed
	// requests, anything the provider will keep rejecting.
	Fatal Class = iota
	// Quota failures come from rate limiting; the reset is
	// provider-controlled, so the wait is a fixed cooldown rather than
	// congestion backoff.
	Quota
	// Transient failures are server-side or network hiccups worth an
	// exponential-backoff retry.
	Transient
)

func (c Class) String() string {
	switch c {
	case Fatal:
		return "fatal"
	case Quota:
		return "quota"
	case Transient:
		return "transient"
	}
	return "unknown"
}

// Classifier maps a call failure to a Class.
type Classifier func(error) Class

// Error is the structured terminal result handed back after retries are
// exhausted or a fatal classification.
type Error struct {
	Op       string
	Attempts int
	Class    Class
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure after %d attempt(s): %v", e.Op, e.Class, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Executor holds the retry policy. Sleep and Jitter are injectable so
// tests can observe backoff timing without real delays.
type Executor struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	QuotaCooldown time.Duration
	Classify      Classifier
	Logger        *slog.Logger

	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func(base time.Duration) time.Duration
}

// NewExecutor returns an executor with the default policy: 3 total
// attempts, backoff starting at 1s doubling up to 60s, and a 60s quota
// cooldown.
func NewExecutor(classify Classifier, logger *slog.Logger) *Executor {
	return &Executor{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      60 * time.Second,
		QuotaCooldown: 60 * time.Second,
		Classify:      classify,
		Logger:        logger,
		Sleep:         sleepContext,
		Jitter:        defaultJitter,
	}
}

// Do runs op until it succeeds, is classified fatal, or MaxAttempts total
// attempts have been made. The zero value of T and an *Error come back on
// terminal failure; Do never panics.
func Do[T any](ctx context.Context, ex *Executor, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	delay := ex.BaseDelay
	var lastErr error
	var lastClass Class

	for attempt := 1; attempt <= ex.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		lastClass = ex.Classify(err)

		switch lastClass {
		case Quota:
			// The provider resets quota on its own schedule; a fixed
			// cooldown, never growing and never counted against the
			// backoff doubling.
			ex.Logger.Warn("quota exhausted, cooling down", "op", op, "attempt", attempt, "cooldown", ex.QuotaCooldown)
			if attempt == ex.MaxAttempts {
				break
			}
			if err := ex.Sleep(ctx, ex.QuotaCooldown); err != nil {
				return zero, &Error{Op: op, Attempts: attempt, Class: lastClass, Err: err}
			}

		case Transient:
			wait := delay + ex.Jitter(delay)
			ex.Logger.Warn("transient failure, backing off", "op", op, "attempt", attempt, "wait", wait, "error", err)
			if attempt == ex.MaxAttempts {
				break
			}
			if err := ex.Sleep(ctx, wait); err != nil {
				return zero, &Error{Op: op, Attempts: attempt, Class: lastClass, Err: err}
			}
			delay = min(delay*2, ex.MaxDelay)

		default:
			ex.Logger.Error("fatal failure, not retrying", "op", op, "attempt", attempt, "error", err)
			return zero, &Error{Op: op, Attempts: attempt, Class: Fatal, Err: err}
		}
	}

	return zero, &Error{Op: op, Attempts: ex.MaxAttempts, Class: lastClass, Err: lastErr}
}

// defaultJitter draws from [0, 0.1*base).
func defaultJitter(base time.Duration) time.Duration {
	tenth := int64(base / 10)
	if tenth <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(tenth))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
