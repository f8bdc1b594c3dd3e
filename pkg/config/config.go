package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an interface for getting a configuration value
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed provides a config.Config whose value has already been converted.
type Typed[T any] interface {
	// Get returns the latest value, falling back to the last known value on
	// error.
	Get(ctx context.Context) T

	// GetSafe returns the latest value and any error that arose getting it.
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

// Duration provides a time.Duration typed config.Config.
type Duration = Typed[time.Duration]

// Float64 provides a float64 typed config.Config.
type Float64 = Typed[float64]

// String provides a string typed config.Config.
type String = Typed[string]
