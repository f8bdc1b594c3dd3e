package memory

import (
	"context"
	"sync"

	"github.com/holaplex/marketplace-go/pkg/config"
)

// Config holds a value in process. It backs the manual overrides applied to
// an Env and lets tests change values while a client is running.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	failure  error
	shutdown bool
}

// NewConfig returns a Config holding value. A nil value reads as unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.failure != nil:
		return nil, c.failure
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// SetValue replaces the held value. Passing nil is equivalent to ClearValue.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// ClearValue makes subsequent Get calls return config.ErrNoValue.
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// Fail makes subsequent Get calls return err until Fail(nil) is called.
func (c *Config) Fail(err error) {
	c.mu.Lock()
	c.failure = err
	c.mu.Unlock()
}
