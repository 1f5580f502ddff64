// Package cache is a small namespaced key/value store with TTLs, backed by
// Redis in production and by process memory for development and tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Set(ctx context.Context, namespace, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
	// TTL returns the remaining lifetime, or a non-positive duration when the key is absent.
	TTL(ctx context.Context, namespace, key string) (time.Duration, error)
	// IncrWithExpire increments a counter and starts its window on the first hit.
	IncrWithExpire(ctx context.Context, namespace, key string, window time.Duration) (int64, error)
	Close() error
}

func fullKey(namespace, key string) string {
	return namespace + ":" + key
}
