package interfaces

import (
	"context"
	"time"
)

// CacheProvider is the minimal byte cache contract used by the content
// inventory. Redis and in-process implementations live in internal/inventory.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
