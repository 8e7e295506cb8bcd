package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// cacheItem represents an item stored in the cache, including its expiration time.
type cacheItem[V any] struct {
	value     V
	expiresAt int64 // UnixNano timestamp, 0 means no expiration
}

// IsExpired checks if the cache item has expired.
func (item *cacheItem[V]) IsExpired() bool {
	if item.expiresAt == 0 {
		return false // No expiration
	}
	return time.Now().UnixNano() > item.expiresAt
}

// Cache is a thread-safe, generic cache with TTL support.
type Cache[K comparable, V any] struct {
	store           sync.Map
	defaultTTL      time.Duration
	janitorInterval time.Duration
	janitorOnce     sync.Once
	stopJanitorCh   chan struct{}
	itemCount       atomic.Int64
}

// Option is a functional option type for Cache configuration.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the default Time-To-Live for items in the cache.
// Items set without a specific TTL will use this value.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

// WithJanitorInterval sets the interval at which the janitor cleans up expired items.
// If interval is 0 or negative, the janitor will not run automatically.
func WithJanitorInterval[K comparable, V any](interval time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.janitorInterval = interval
	}
}

// NewCache creates a new Cache instance with optional configurations.
// The janitor goroutine is lazy-started by the first Set carrying a TTL.
func NewCache[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		janitorInterval: 5 * time.Minute,
		stopJanitorCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache[K, V]) startJanitor() {
	c.janitorOnce.Do(func() {
		if c.janitorInterval <= 0 {
			return
		}
		ticker := time.NewTicker(c.janitorInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					c.DeleteExpired()
				case <-c.stopJanitorCh:
					ticker.Stop()
					return
				}
			}
		}()
	})
}

// Set adds or updates an item in the cache with the default TTL (if configured).
// If defaultTTL is 0, the item will not expire unless SetWithTTL is used.
func (c *Cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.defaultTTL)
}

// SetWithTTL adds or updates an item in the cache with a specific TTL.
// If ttl is 0, the item will not expire.
// If ttl is negative, the item is treated as already expired and removed.
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
		c.startJanitor()
	} else if ttl < 0 {
		c.Delete(k)
		return
	}

	item := &cacheItem[V]{
		value:     v,
		expiresAt: expiresAt,
	}

	_, loaded := c.store.LoadOrStore(k, item)
	if !loaded {
		c.itemCount.Add(1)
	} else {
		// An old item was there. Replace it; the count doesn't change.
		c.store.Store(k, item)
	}
}

// Get retrieves an item from the cache.
// It returns the value and true if the item exists and has not expired.
// Otherwise, it returns the zero value for V and false.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zeroV V
	loaded, ok := c.store.Load(k)
	if !ok {
		return zeroV, false // Not found
	}

	item, ok := loaded.(*cacheItem[V])
	if !ok {
		// Should not happen if Set is used correctly; remove malformed entry.
		c.store.Delete(k)
		c.itemCount.Add(-1)
		return zeroV, false
	}

	if item.IsExpired() {
		c.store.Delete(k) // Lazy deletion
		c.itemCount.Add(-1)
		return zeroV, false // Expired
	}

	return item.value, true
}

// GetOrSet returns the existing value for the key if present and not expired.
// Otherwise, it stores and returns the given value (with default TTL).
// The loaded result is true if the value was loaded, false if stored.
func (c *Cache[K, V]) GetOrSet(k K, v V) (V, bool) {
	return c.GetOrSetWithTTL(k, v, c.defaultTTL)
}

// GetOrSetWithTTL returns the existing value for the key if present and not expired.
// Otherwise, it stores and returns the given value with the specified TTL.
// The loaded result is true if the value was loaded, false if stored.
func (c *Cache[K, V]) GetOrSetWithTTL(k K, v V, ttl time.Duration) (V, bool) {
	if existingVal, found := c.Get(k); found {
		return existingVal, true // Loaded
	}

	c.SetWithTTL(k, v, ttl)
	return v, false // Stored
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(k K) {
	if _, loaded := c.store.LoadAndDelete(k); loaded {
		c.itemCount.Add(-1)
	}
}

// DeleteExpired manually triggers a cleanup of expired items.
// This is also called periodically by the janitor goroutine if configured.
func (c *Cache[K, V]) DeleteExpired() {
	c.store.Range(func(key, value interface{}) bool {
		k := key.(K)
		item, ok := value.(*cacheItem[V])
		if !ok { // Should not happen
			c.store.Delete(k)
			return true
		}
		if item.IsExpired() {
			if _, loaded := c.store.LoadAndDelete(k); loaded {
				c.itemCount.Add(-1)
			}
		}
		return true
	})
}

// Range iterates over the cache items, calling f for each key and unexpired value.
// If f returns false, range stops the iteration.
// Note: Iteration order is not guaranteed.
func (c *Cache[K, V]) Range(f func(key K, value V) bool) {
	now := time.Now().UnixNano()
	c.store.Range(func(key, value interface{}) bool {
		k := key.(K)
		item, ok := value.(*cacheItem[V])
		if !ok {
			return true // Skip malformed entries
		}

		// Skip expired items without deleting them here; Get or the janitor
		// handles removal so the iteration never mutates the map.
		if item.expiresAt != 0 && now > item.expiresAt {
			return true
		}
		return f(k, item.value)
	})
}

// Clean removes all items from the cache.
func (c *Cache[K, V]) Clean() {
	c.store = sync.Map{}
	c.itemCount.Store(0)
}

// Len returns the current number of items in the cache.
// This count includes items that might be expired but not yet collected by the janitor.
func (c *Cache[K, V]) Len() int64 {
	return c.itemCount.Load()
}

// Close stops the janitor goroutine if it's running.
// Call Close when the cache is no longer needed to free resources.
func (c *Cache[K, V]) Close() {
	if c.stopJanitorCh != nil {
		select {
		case c.stopJanitorCh <- struct{}{}: // Signal janitor to stop
		default: // Avoid blocking if the janitor never started or already stopped
		}
	}
}
