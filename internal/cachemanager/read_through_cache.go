package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zjrosen/ezhl/internal/log"
)

// ReadThroughCache fills cache from a compute func on a miss. It counts
// its own lookups so callers see hit rates whatever backs the cache.
type ReadThroughCache[K comparable, V any, I any] struct {
	useCase string
	cache   CacheManager[K, V]
	compute func(ctx context.Context, input I) (V, error)
	bypass  bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewReadThroughCache wraps cache for useCase, which labels log lines.
// With bypass every call goes straight to compute and nothing is stored.
func NewReadThroughCache[K comparable, V any, I any](
	useCase string,
	cache CacheManager[K, V],
	compute func(ctx context.Context, input I) (V, error),
	bypass bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		useCase: useCase,
		cache:   cache,
		compute: compute,
		bypass:  bypass,
	}
}

// Get returns the value cached under key, computing it from input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.load(ctx, key, input, ttl, r.cache.Get)
}

// GetWithRefresh is Get, but a hit also restarts the entry's TTL. Scans of
// lines still on screen stay cached this way.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.load(ctx, key, input, ttl, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	})
}

// Stats reports the lookups made through r. Items is always zero; ask the
// backing cache for its size.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

func (r *ReadThroughCache[K, V, I]) load(
	ctx context.Context,
	key K,
	input I,
	ttl time.Duration,
	lookup func(context.Context, K) (V, bool),
) (V, error) {
	if r.bypass {
		return r.compute(ctx, input)
	}

	if value, ok := lookup(ctx, key); ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)
	log.Debug(log.CatCache, "Read-through miss", "cache", r.useCase, "key", key)

	value, err := r.compute(ctx, input)
	if err != nil {
		log.ErrorErr(log.CatCache, "Read-through compute failed", err, "cache", r.useCase, "key", key)
		return value, err
	}

	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}
