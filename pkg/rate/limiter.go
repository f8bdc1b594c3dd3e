package rate

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter decides whether an operation identified by key may proceed now.
type Limiter interface {
	Allow(key string) (bool, error)
}

// Unlimited admits every operation.
type Unlimited struct{}

// Allow implements Limiter.Allow.
func (Unlimited) Allow(string) (bool, error) {
	return true, nil
}

// KeyedOption configures a KeyedLimiter.
type KeyedOption func(l *KeyedLimiter)

// WithBurst sets how many operations a key may run back to back. Values
// below one are raised to one.
func WithBurst(burst int) KeyedOption {
	return func(l *KeyedLimiter) {
		l.burst = burst
	}
}

// WithKeyLimit gives key its own rate instead of the shared one.
func WithKeyLimit(key string, limit rate.Limit) KeyedOption {
	return func(l *KeyedLimiter) {
		l.perKey[key] = limit
	}
}

// KeyedLimiter keeps an independent token bucket per key, such as one per
// RPC method. Buckets are created on first use.
type KeyedLimiter struct {
	limit  rate.Limit
	burst  int
	perKey map[string]rate.Limit

	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
}

// NewKeyedLimiter returns a KeyedLimiter allowing limit operations per second
// for every key. Unless WithBurst is given the burst matches the limit.
func NewKeyedLimiter(limit rate.Limit, opts ...KeyedOption) *KeyedLimiter {
	l := &KeyedLimiter{
		limit:   limit,
		burst:   int(limit),
		perKey:  make(map[string]rate.Limit),
		buckets: make(map[string]*rate.Limiter),
	}
	for _, o := range opts {
		o(l)
	}
	if l.burst < 1 {
		l.burst = 1
	}
	return l
}

// Allow implements Limiter.Allow.
func (l *KeyedLimiter) Allow(key string) (bool, error) {
	return l.bucket(key).Allow(), nil
}

func (l *KeyedLimiter) bucket(key string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok = l.buckets[key]; ok {
		return b
	}

	limit, ok := l.perKey[key]
	if !ok {
		limit = l.limit
	}
	b = rate.NewLimiter(limit, l.burst)
	l.buckets[key] = b
	return b
}
