// Package cache provides the time-bounded memoization used to bound
// the request rate against the exchange. Entries are keyed by request
// kind and asset and invalidated purely by elapsed time.
package cache

import (
	"context"
	"time"
)

// Store is the cache backend interface. Implementations must treat a
// missing or expired entry identically: Get returns ok=false.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// Key builds a cache key from a request kind and an asset symbol.
func Key(kind, asset string) string {
	return kind + ":" + asset
}
