package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// ErrPollTimeout is returned when the deadline elapses before the predicate
// is satisfied. Callers that have a best-effort fallback match on it with
// errors.Is.
var ErrPollTimeout = eris.New("resilience: poll deadline exceeded")

// PollConfig controls a fixed-interval poll loop.
type PollConfig struct {
	// Interval between predicate evaluations. Default: 1.5s.
	Interval time.Duration

	// Timeout bounds the whole loop. Default: 30s.
	Timeout time.Duration
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = 1500 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// Poll evaluates fn at a fixed interval until it reports done, the timeout
// elapses, or the context is canceled. fn is evaluated once immediately.
// A non-nil error from fn aborts the loop; ErrPollTimeout signals that the
// deadline elapsed with the predicate unsatisfied.
func Poll[T any](ctx context.Context, cfg PollConfig, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	for {
		val, done, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return val, nil
		}

		timer := time.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return zero, ErrPollTimeout
			}
			return zero, eris.Wrap(ctx.Err(), "resilience: poll canceled")
		case <-timer.C:
		}
	}
}
