package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports an absent or expired key. Substrates return it instead of
// their own absence sentinels so callers never depend on the backend.
var ErrMiss = errors.New("cache miss")

// Store is the key-value substrate under the listing cache. Implementations
// must expire entries after their TTL and support prefix enumeration.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
	DeleteMany(ctx context.Context, keys []string) error
}
