package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/holaplex/marketplace-go/pkg/config"
	"github.com/holaplex/marketplace-go/pkg/config/wrapper"
)

// variable is a config.Config backed by a single environment variable. The
// variable is looked up on every Get, so changes made after construction are
// observed.
type variable struct {
	name string
}

// NewConfig returns a config.Config reading the environment variable key.
// Keys are upper cased. Unset or blank variables yield config.ErrNoValue.
func NewConfig(key string) config.Config {
	return &variable{name: strings.ToUpper(strings.TrimSpace(key))}
}

// Get implements config.Config.Get
func (v *variable) Get(_ context.Context) (interface{}, error) {
	val, ok := os.LookupEnv(v.name)
	if !ok {
		return nil, config.ErrNoValue
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements config.Config.Shutdown
func (v *variable) Shutdown() {}

// NewFloat64Config returns a float64 config read from key.
func NewFloat64Config(key string, defaultValue float64) config.Float64 {
	return wrapper.NewFloat64Config(NewConfig(key), defaultValue)
}

// NewStringConfig returns a string config read from key.
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig returns a duration config read from key, such as "30s".
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
