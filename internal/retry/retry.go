// Package retry runs probe actions with exponential backoff between
// attempts.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Status is the terminal outcome of a probe execution.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Result records the outcome of one probe across all of its attempts.
// Immutable once returned; duration is wall clock from first attempt
// start to final resolution, inclusive of backoff waits.
type Result struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	DurationMs int64  `json:"duration"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// Passed reports whether the probe succeeded on any attempt.
func (r Result) Passed() bool {
	return r.Status == StatusPassed
}

// Scheduler wraps idempotent read-only actions with retry behaviour.
//
// The backoff before retry attempt a (counted from 1 for the first
// retry) is 2^a seconds: 2s, 4s, 8s, ...
//
// Actions passed to Execute must be free of external side effects —
// a retried action is assumed to have left no trace behind. Never hand
// the scheduler a write.
type Scheduler struct {
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scheduler with real sleeping.
func New() *Scheduler {
	return &Scheduler{sleep: contextSleep}
}

// WithSleep returns a Scheduler using the supplied sleep function.
// Tests use this to observe backoff without waiting it out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Scheduler {
	return &Scheduler{sleep: sleep}
}

// Execute invokes action up to maxRetries+1 times, backing off
// exponentially between attempts. It returns on the first success;
// after exhaustion the Result carries the last failure's message.
// Errors never propagate past the scheduler — they are captured into
// the Result.
func (s *Scheduler) Execute(ctx context.Context, name string, action func(ctx context.Context) error, maxRetries int) Result {
	start := time.Now()
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		attempts = attempt
		err := action(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("probe", name).
					Int("attempts", attempt).
					Dur("elapsed", time.Since(start)).
					Msg("Probe passed after retries")
			}
			return Result{
				Name:       name,
				Status:     StatusPassed,
				DurationMs: time.Since(start).Milliseconds(),
				Attempts:   attempt,
			}
		}

		lastErr = err

		if attempt > maxRetries {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn().
			Err(err).
			Str("probe", name).
			Int("attempt", attempt).
			Int("max_attempts", maxRetries+1).
			Dur("retry_in", backoff).
			Msg("Probe attempt failed, retrying...")

		if err := s.sleep(ctx, backoff); err != nil {
			// Context cancelled during backoff; report what we have.
			break
		}
	}

	log.Error().
		Err(lastErr).
		Str("probe", name).
		Int("max_attempts", maxRetries+1).
		Msg("Probe failed after all retry attempts")

	return Result{
		Name:       name,
		Status:     StatusFailed,
		DurationMs: time.Since(start).Milliseconds(),
		Attempts:   attempts,
		Error:      lastErr.Error(),
	}
}

// contextSleep waits for d, respecting context cancellation.
func contextSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
