package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Store backed by a shared Redis instance. It trades the
// process-local consistency of Memory for a cache shared between
// dashboard replicas; the TTL semantics are identical because Redis
// expires keys server-side.
//
// Redis failures degrade to cache misses: the caller re-fetches from
// the exchange, which is the same behavior as an expired entry.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed cache store from a redis:// URL.
func NewRedis(url string, logger zerolog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// Get returns the cached value for key if present and unexpired.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("redis get failed, treating as miss")
		}
		return nil, false
	}
	return val, true
}

// Set stores val under key with the given ttl.
func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
