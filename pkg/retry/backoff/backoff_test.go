package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	s := Constant(400 * time.Millisecond)

	for i := uint(1); i < 10; i++ {
		assert.Equal(t, 400*time.Millisecond, s(i))
	}
}

func TestExponential(t *testing.T) {
	s := Exponential(2*time.Second, 3)

	assert.Equal(t, 2*time.Second, s(1))
	assert.Equal(t, 6*time.Second, s(2))
	assert.Equal(t, 18*time.Second, s(3))

	assert.EqualValues(t, math.MaxInt64, s(200))
}

func TestBinaryExponential(t *testing.T) {
	s := BinaryExponential(500 * time.Millisecond)

	assert.Equal(t, 500*time.Millisecond, s(1))
	assert.Equal(t, time.Second, s(2))
	assert.Equal(t, 2*time.Second, s(3))
	assert.Equal(t, 4*time.Second, s(4))
}

func TestCapped(t *testing.T) {
	s := Capped(BinaryExponential(time.Second), 5*time.Second)

	assert.Equal(t, time.Second, s(1))
	assert.Equal(t, 4*time.Second, s(3))
	assert.Equal(t, 5*time.Second, s(4))
	assert.Equal(t, 5*time.Second, s(100))
}
