package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer.
// Redis in production, an in-memory fake in tests.
type Cache interface {
	// Get loads key and unmarshals it into dest.
	// found=false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Ping checks connectivity
	Ping(ctx context.Context) error
}
