package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaplex/marketplace-go/pkg/config"
)

func TestConfig_Unset(t *testing.T) {
	const key = "MARKETPLACE_TEST_UNSET"

	_, err := NewConfig(key).Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	t.Setenv(key, "   ")
	_, err = NewConfig(key).Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)
}

func TestConfig_ReadsOnGet(t *testing.T) {
	const key = "MARKETPLACE_TEST_COMMITMENT"

	c := NewConfig(key)

	t.Setenv(key, " finalized\n")
	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("finalized"), v)

	t.Setenv(key, "processed")
	v, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("processed"), v)
}

func TestConfig_KeysAreUpperCased(t *testing.T) {
	t.Setenv("MARKETPLACE_TEST_ENDPOINT", "http://localhost:8899")

	assert.Equal(t, "http://localhost:8899", NewStringConfig("marketplace_test_endpoint", "").Get(context.Background()))
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("MARKETPLACE_TEST_TIMEOUT", "90s")
	t.Setenv("MARKETPLACE_TEST_RATE", "12.5")
	t.Setenv("MARKETPLACE_TEST_BAD_RATE", "fast")

	assert.Equal(t, 90*time.Second, NewDurationConfig("MARKETPLACE_TEST_TIMEOUT", time.Second).Get(ctx))
	assert.Equal(t, 12.5, NewFloat64Config("MARKETPLACE_TEST_RATE", 1).Get(ctx))

	// Unparseable and unset values fall back to their defaults.
	assert.Equal(t, 3.0, NewFloat64Config("MARKETPLACE_TEST_BAD_RATE", 3).Get(ctx))
	assert.Equal(t, "fallback", NewStringConfig("MARKETPLACE_TEST_MISSING", "fallback").Get(ctx))
}
