// Package retrieval implements the cache-aside policy that mediates every
// gateway operation: serve from the cache store when a fresh entry exists,
// otherwise fetch from the provider and write the result back with a TTL.
package retrieval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stocksight/data-gateway/pkg/cache"
)

// Policy wraps fetch operations with cache-aside semantics over a shared
// store. It is safe for concurrent use; concurrent misses on the same key
// each perform their own fetch and the last write wins.
type Policy struct {
	store  cache.Store
	logger zerolog.Logger
}

// New creates a policy over the given store.
func New(store cache.Store) *Policy {
	return &Policy{
		store:  store,
		logger: log.With().Str("component", "retrieval-policy").Logger(),
	}
}

// Invalidate removes the cached entry for an operation invocation, used when
// an upstream write makes the cached read stale.
func (p *Policy) Invalidate(ctx context.Context, operation string, args []any, kwargs map[string]any) error {
	key, err := cache.DeriveKey(operation, args, kwargs)
	if err != nil {
		return err
	}
	return p.store.Delete(ctx, key)
}

// Fetch runs fetch with cache-aside semantics. On a hit the cached payload
// is returned without invoking fetch; on a miss fetch runs exactly once for
// this call, its result is stored under the derived key with the given TTL,
// and the value is returned. Fetch failures propagate unchanged and are
// never cached, so the next call retries against the provider.
func Fetch[T any](ctx context.Context, p *Policy, operation string, args []any, kwargs map[string]any, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	key, err := cache.DeriveKey(operation, args, kwargs)
	if err != nil {
		return zero, err
	}

	if data, ok := p.store.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			p.logger.Debug().Str("key", key).Msg("Cache hit")
			return cached, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		p.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		// The value is still good; only the cache write is lost.
		p.logger.Warn().Err(err).Str("key", key).Msg("Cache encode failed, returning uncached value")
		return value, nil
	}

	// The fetch completed, so finish the write even if the caller has gone
	// away. Partial writes cannot happen: the full body was already parsed.
	if err := p.store.Set(context.WithoutCancel(ctx), key, data, ttl); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("Cache set failed")
	} else {
		p.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached fetch result")
	}

	return value, nil
}
