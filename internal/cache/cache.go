// Package cache is the key-value cache the scheduler publishes its order to.
// Redis backs it in production; Memory serves tests and single-process runs.
package cache

import (
	"context"
	"time"
)

// Cache stores string values under keys. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns ErrMiss when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value with the given TTL. A TTL <= 0 never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
