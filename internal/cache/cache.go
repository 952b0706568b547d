// Package cache provides the listing cache abstraction with an explicit
// invalidation contract: writers call Invalidate with a key pattern
// synchronously after any write to the cached data.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized values under string keys with a TTL.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes every key matching the glob pattern.
	Invalidate(ctx context.Context, pattern string) error
}

// noop is the disabled-cache implementation: every read misses and writes
// are discarded.
type noop struct{}

// Noop returns a cache that stores nothing.
func Noop() Cache { return noop{} }

func (noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noop) Invalidate(context.Context, string) error                 { return nil }
