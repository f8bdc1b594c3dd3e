package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
)

// Strategy decides whether an action that failed with err after attempts
// tries should run again. Strategies may block, but must return early once
// ctx is done.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit caps the total number of attempts. maxAttempts should be at least 1.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of retriableErrors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// Backoff delays the next attempt by strategy, capped at maxBackoff.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	capped := backoff.Capped(strategy, maxBackoff)
	return func(ctx context.Context, attempts uint, _ error) bool {
		return sleeperImpl.Sleep(ctx, capped(attempts))
	}
}

// BackoffWithJitter is Backoff with the capped delay moved up or down by at
// most jitter, a fraction of the delay. A capped delay of 100ms with a jitter
// of 0.1 waits between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	capped := backoff.Capped(strategy, maxBackoff)
	return func(ctx context.Context, attempts uint, _ error) bool {
		delay := capped(attempts)
		delay = time.Duration(float64(delay) * (1 + (rand.Float64()*jitter*2 - jitter)))
		return sleeperImpl.Sleep(ctx, delay)
	}
}

type sleeper interface {
	// Sleep waits for d, returning false if ctx is done first.
	Sleep(ctx context.Context, d time.Duration) bool
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

var sleeperImpl sleeper = timerSleeper{}
