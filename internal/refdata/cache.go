// Package refdata caches slow-changing upstream reference data.
//
// Values are immutable snapshots swapped atomically; readers never lock.
// Concurrent refreshes of the same cache are collapsed into one load, though a
// redundant load would only cost an extra upstream request.
package refdata

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Loader produces a fresh value for a Cache.
type Loader[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache holds one value for a fixed TTL.
type Cache[T any] struct {
	ttl   time.Duration
	load  Loader[T]
	now   Clock
	snap  atomic.Pointer[entry[T]]
	group singleflight.Group
}

// NewCache creates a cache that reloads via load once a value is older than ttl.
// A nil clock means time.Now.
func NewCache[T any](ttl time.Duration, load Loader[T], clock Clock) *Cache[T] {
	if clock == nil {
		clock = time.Now
	}
	return &Cache[T]{ttl: ttl, load: load, now: clock}
}

// GetOrRefresh returns the cached value, loading a new one when it is missing
// or stale. If a reload fails and a stale value exists, the stale value is
// returned without error.
func (c *Cache[T]) GetOrRefresh(ctx context.Context) (T, error) {
	if e := c.snap.Load(); e != nil && c.fresh(e) {
		return e.value, nil
	}

	// The load outlives a cancelled caller so others waiting on it still get a value.
	ch := c.group.DoChan("refresh", func() (any, error) {
		if e := c.snap.Load(); e != nil && c.fresh(e) {
			return e, nil
		}
		v, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		e := &entry[T]{value: v, fetchedAt: c.now()}
		c.snap.Store(e)
		return e, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if stale := c.snap.Load(); stale != nil {
				return stale.value, nil
			}
			return zero, res.Err
		}
		return res.Val.(*entry[T]).value, nil
	}
}

// Peek returns the cached value and when it was fetched without loading.
func (c *Cache[T]) Peek() (T, time.Time, bool) {
	e := c.snap.Load()
	if e == nil {
		var zero T
		return zero, time.Time{}, false
	}
	return e.value, e.fetchedAt, true
}

// Set replaces the cached value.
func (c *Cache[T]) Set(v T) {
	c.snap.Store(&entry[T]{value: v, fetchedAt: c.now()})
}

// Invalidate drops the cached value so the next read reloads.
func (c *Cache[T]) Invalidate() {
	c.snap.Store(nil)
}

func (c *Cache[T]) fresh(e *entry[T]) bool {
	return c.now().Sub(e.fetchedAt) < c.ttl
}
