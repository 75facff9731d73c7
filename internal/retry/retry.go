// Package retry runs an operation a bounded number of times with a linearly
// growing pause between attempts (step, 2*step, 3*step, ...).
package retry

import (
	"context"
	"errors"
	"time"
)

// Config describes how often and how patiently to retry.
type Config struct {
	Attempts int           // total attempts, values below 1 mean a single attempt
	Step     time.Duration // pause after attempt n is n*Step
}

// Linear returns a Config with the given attempts and backoff step.
func Linear(attempts int, step time.Duration) Config {
	return Config{Attempts: attempts, Step: step}
}

// Delay returns the pause that follows the given 1-based attempt.
func (c Config) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * c.Step
}

// Do calls fn until it succeeds, the attempts run out, or ctx is done.
// notify, when non-nil, is told about each failed attempt before the pause.
// The last error is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, notify func(attempt int, err error)) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if notify != nil {
			notify(attempt, err)
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(cfg.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
