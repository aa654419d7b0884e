package cache

import (
	"context"
	"time"
)

// DefaultTTL is applied when a caller passes a non-positive TTL.
const DefaultTTL = 300 * time.Second

// Store is the shared cache interface. Values are opaque byte blobs; any
// serialisation happens on the caller's side. A missing key is reported via
// the boolean, never as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
