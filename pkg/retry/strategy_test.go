package retry

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	ctx := context.Background()
	strategy := Limit(2)

	assert.True(t, strategy(ctx, 1, errors.New("test")))
	assert.False(t, strategy(ctx, 2, errors.New("test")))

	counter, err := Retry(ctx, func() error {
		return errors.New("test")
	}, Limit(2))

	assert.EqualError(t, err, "test")
	assert.EqualValues(t, 2, counter)
}

func TestRetriableErrors(t *testing.T) {
	ctx := context.Background()
	retriableErrors := []error{
		errors.New("rate limited"),
		errors.New("service unavailable"),
	}

	strategy := RetriableErrors(retriableErrors...)
	for _, err := range retriableErrors {
		assert.True(t, strategy(ctx, 1, err))
		assert.True(t, strategy(ctx, 1, errors.Wrap(err, "wrapper")))
	}
	assert.False(t, strategy(ctx, 2, errors.New("unexpected")))
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	strategy := Backoff(backoff.BinaryExponential(100*time.Millisecond), 500*time.Millisecond)
	for i := uint(1); i <= 5; i++ {
		assert.True(t, strategy(context.Background(), i, errors.New("test-error")))
	}

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}, ts.sleepTimes)
}

func TestBackoff_Cancelled(t *testing.T) {
	sleeperImpl = &testSleeper{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strategy := Backoff(backoff.Constant(time.Millisecond), time.Millisecond)
	assert.False(t, strategy(ctx, 1, errors.New("test-error")))
}

func TestBackoffWithJitter(t *testing.T) {
	iterations := 10000
	delay := time.Millisecond

	ts := &testSleeper{}
	sleeperImpl = ts

	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)
	for i := 0; i < iterations; i++ {
		assert.True(t, strategy(context.Background(), 1, errors.New("err")))
	}

	// Uniform jitter of 10% averages out to the delay, with a mean absolute
	// deviation of 5%.
	assert.InDelta(t, float64(delay), float64(ts.Mean()), 0.1*float64(delay))
	assert.InDelta(t, 0.05*float64(delay), float64(ts.AbsDeviation()), 0.05*0.05*float64(delay))

	for _, d := range ts.sleepTimes {
		assert.True(t, d >= 900*time.Microsecond && d <= 1100*time.Microsecond, d)
	}
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	t.sleepTimes = append(t.sleepTimes, d)
	return ctx.Err() == nil
}

func (t *testSleeper) Mean() time.Duration {
	var total time.Duration
	for _, d := range t.sleepTimes {
		total += d
	}
	return time.Duration(int(total) / len(t.sleepTimes))
}

func (t *testSleeper) AbsDeviation() time.Duration {
	mean := t.Mean()

	var dev time.Duration
	for _, d := range t.sleepTimes {
		dev += time.Duration(math.Abs(float64(d) - float64(mean)))
	}
	return time.Duration(int(dev) / len(t.sleepTimes))
}
