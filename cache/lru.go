package cache

import (
	"context"
	"fmt"

	"github.com/maypok86/otter/v2"
	"golang.org/x/sync/singleflight"
)

// Fetcher fetches the value for key from the network when the cache
// misses.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// fetchThrough is a size-bounded LRU with coalesced concurrent misses
// (spec §4.E): otter.v2 provides the bounded W-TinyLFU eviction, a
// singleflight.Group collapses duplicate in-flight fetches for the same
// key onto one call so N concurrent callers for an uncached id produce
// one HTTP round trip between them.
type fetchThrough[K comparable, V any] struct {
	cache   *otter.Cache[K, V]
	group   singleflight.Group
	keyFunc func(K) string

	onHit  func()
	onMiss func()
}

func newFetchThrough[K comparable, V any](maxSize int, keyFunc func(K) string) (*fetchThrough[K, V], error) {
	c, err := otter.New(&otter.Options[K, V]{MaximumSize: maxSize})
	if err != nil {
		return nil, fmt.Errorf("cache: create lru: %w", err)
	}
	return &fetchThrough[K, V]{cache: c, keyFunc: keyFunc, onHit: func() {}, onMiss: func() {}}, nil
}

// GetIfPresent returns the cached value without triggering a fetch.
func (f *fetchThrough[K, V]) GetIfPresent(key K) (V, bool) {
	return f.cache.GetIfPresent(key)
}

// Set inserts or overwrites a value directly, bypassing the fetcher.
func (f *fetchThrough[K, V]) Set(key K, val V) {
	f.cache.Set(key, val)
}

// Invalidate removes a single key.
func (f *fetchThrough[K, V]) Invalidate(key K) {
	f.cache.Invalidate(key)
}

// Get returns the cached value for key, fetching it through fetch on a
// miss. Concurrent misses for the same key are coalesced: every caller
// waiting on the same key gets the same value and error.
func (f *fetchThrough[K, V]) Get(ctx context.Context, key K, fetch Fetcher[K, V]) (V, error) {
	if v, ok := f.cache.GetIfPresent(key); ok {
		f.onHit()
		return v, nil
	}
	f.onMiss()

	flightKey := f.keyFunc(key)
	v, err, _ := f.group.Do(flightKey, func() (any, error) {
		if v, ok := f.cache.GetIfPresent(key); ok {
			return v, nil
		}
		v, err := fetch(ctx, key)
		if err != nil {
			return v, err
		}
		f.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	out, ok := v.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("cache: fetch-through returned unexpected type %T", v)
	}
	return out, nil
}
