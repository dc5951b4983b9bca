// Package cache wraps an entity parser collaborator in a bounded,
// goroutine-safe LRU so repeated lookups of the same input (a common pattern
// when an embedding application re-parses slightly varying utterances) skip
// the underlying parser. A single mutex guards groupcache's lru.Cache, which
// is not itself safe for concurrent use.
package cache

import (
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCapacity is the LRU capacity used by every entity parser cache.
const DefaultCapacity = 1000

// Cache memoises parser results of type T keyed by a lowercased input plus a
// scope fingerprint.
type Cache[T any] struct {
	mu    sync.Mutex
	inner *lru.Cache
}

// New builds a Cache with the given capacity (entry count, not bytes).
func New[T any](capacity int) *Cache[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[T]{inner: lru.New(capacity)}
}

// Key builds the cache key used throughout the entity parser collaborators:
// the lowercased input joined with a stable fingerprint of the requested
// entity/kind scope.
func Key(input string, scope []string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(input))
	b.WriteByte(0)
	for i, s := range scope {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s)
	}
	return b.String()
}

// Get returns the cached value for key, if present.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	v, ok := c.inner.Get(key)
	if !ok {
		return zero, false
	}
	val, ok := v.(T)
	if !ok {
		return zero, false
	}
	return val, true
}

// Add stores value under key, evicting the least recently used entry if the
// cache is at capacity.
func (c *Cache[T]) Add(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inner.Add(key, value)
}

// Len reports the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Len()
}
