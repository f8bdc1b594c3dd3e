package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
)

func TestRetry_TimerSleeper(t *testing.T) {
	sleeperImpl = timerSleeper{}

	start := time.Now()
	n, err := Retry(context.Background(), func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(100*time.Millisecond), 100*time.Millisecond),
	)

	assert.Error(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 100*time.Millisecond <= time.Since(start))
	assert.True(t, time.Second > time.Since(start))
}

func TestRetry_CancelledDuringBackoff(t *testing.T) {
	sleeperImpl = timerSleeper{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errPending := errors.New("pending")

	start := time.Now()
	n, err := Retry(ctx, func() error { return errPending },
		Backoff(backoff.Constant(time.Hour), time.Hour),
	)

	assert.Equal(t, errPending, err)
	assert.EqualValues(t, 1, n)
	assert.True(t, time.Second > time.Since(start))
}

func TestRetry_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	n, err := Retry(ctx, func() error {
		calls++
		if calls == 3 {
			cancel()
		}
		return errors.New("still failing")
	})

	assert.EqualError(t, err, "still failing")
	assert.EqualValues(t, 3, n)
	assert.Equal(t, 3, calls)
}

func TestRetrier(t *testing.T) {
	retriableErr := errors.New("retriable")
	r := NewRetrier(Limit(5), RetriableErrors(retriableErr))

	attempts, err := r.Retry(context.Background(), func() error { return nil })
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)

	attempts, err = r.Retry(context.Background(), func() error { return errors.New("unknown") })
	assert.Error(t, err)
	assert.EqualValues(t, 1, attempts)

	attempts, err = r.Retry(context.Background(), func() error { return errors.Wrap(retriableErr, "wrapped") })
	assert.ErrorIs(t, err, retriableErr)
	assert.EqualValues(t, 5, attempts)
}
