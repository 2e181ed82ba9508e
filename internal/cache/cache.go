package cache

import (
	"context"
	"time"
)

// BytesCache is a minimal TTL key-value store. The schedule service keeps the
// whole flight aggregate under a single key, so nothing richer is needed.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
