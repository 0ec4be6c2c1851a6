package loader

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/watim-playground/vfs"
)

// Default is the process-wide cache used by Cached
var Default = NewCache()

// Cached wraps fn with the process-wide cache
func Cached(fn Func) Func {
	return Default.Wrap(fn)
}

// Cache memoizes loaded content keyed by path. Concurrent misses for the same
// path share one underlying load. Failed loads are not remembered, so a later
// request retries.
type Cache struct {
	entries map[string]string
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
	mu      sync.RWMutex
}

// CacheStats is a point-in-time view of cache usage
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Wrap returns a Func that serves fn's results from the cache. Callers that
// share a Cache must agree on what a path means, so use one cache per source.
func (c *Cache) Wrap(fn Func) Func {
	return func(ctx context.Context, path string) (string, error) {
		if text, ok := c.lookup(path); ok {
			c.hits.Inc()
			Logger().Debug("cache hit", zap.String("path", path))
			return text, nil
		}

		v, err, _ := c.group.Do(path, func() (any, error) {
			if text, ok := c.lookup(path); ok {
				return text, nil
			}
			c.misses.Inc()
			text, err := fn(ctx, path)
			if err != nil {
				return "", err
			}
			c.mu.Lock()
			c.entries[path] = text
			c.mu.Unlock()
			Logger().Debug("cache fill", zap.String("path", path), zap.Int("bytes", len(text)))
			return text, nil
		})
		if err != nil {
			return "", err
		}
		return v.(string), nil
	}
}

// WrapTree returns a tree of the same shape whose loaders go through the
// cache.
func (c *Cache) WrapTree(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	// The wrapping never fails, so neither does the resolution.
	wrapped, _ := vfs.Resolve(context.Background(), tree, func(_ context.Context, _ string, fn Func) (Func, error) {
		return c.Wrap(fn), nil
	})
	return wrapped
}

func (c *Cache) lookup(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[path]
	return text, ok
}

// Forget drops a single entry
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Reset drops every entry and zeroes the counters
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
	}
}
