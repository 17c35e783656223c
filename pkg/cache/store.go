package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the key/value contract the retrieval policy caches through.
//
// Get reports a miss both when the key was never set and when the entry's
// TTL has elapsed; callers never inspect timestamps themselves. A backend
// failure on Get is indistinguishable from a miss. Set requires a positive
// TTL; there are no immortal entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RedisStore implements Store over a Redis backend. Expiry is delegated to
// Redis (SET with TTL), so concurrent Get/Set from many callers needs no
// locking here: mutation is always a whole-entry overwrite, last write wins.
type RedisStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a store over the given Redis client. The caller owns
// the client lifecycle until Close is called on the store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		logger: log.With().Str("component", "cache-store").Logger(),
	}
}

// Get retrieves the value stored under key. The second return value is false
// on a miss, on an expired entry, and on any backend error: an unreachable
// cache degrades to a provider fetch, never to a failed retrieval.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, false
		}
		cacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		return nil, false
	}

	cacheHits.Inc()
	cacheEntryBytes.Observe(float64(len(data)))
	return data, true
}

// Set stores value under key with the given TTL. A non-positive TTL is a
// caller bug and is rejected. Backend errors are returned but callers treat
// them as advisory: a failed write must not fail the retrieval.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: ttl must be positive, got %v", key, ttl)
	}

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	cacheEntryBytes.Observe(float64(len(value)))
	return nil
}

// Delete removes the entry under key, used for explicit invalidation when an
// upstream write makes cached reads stale.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
