package cache

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/metrics"
)

const DefaultCleanupInterval = time.Second

type Cache struct {
	mu      sync.RWMutex
	items   map[string]*CacheItem
	maxSize int
	done    chan struct{}
	once    sync.Once
}

type CacheItem struct {
	Value      interface{}
	Expiration time.Time
	TTL        time.Duration
}

// New starts a cache sized for maxSize items. Live items are never evicted:
// when the bound is reached expired items are dropped and, if that is not
// enough, the cache grows past it. A maxSize of zero or less means unbounded.
// Get extends an item's expiration by its TTL. Close stops the cleanup loop.
func New(maxSize int) *Cache {
	cache := &Cache{
		items:   make(map[string]*CacheItem),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}

	go cache.cleanup(DefaultCleanupInterval)

	return cache
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.removeExpiredLocked(time.Now())
		if len(c.items) >= c.maxSize {
			log.Warnf("Cache is over its size bound of %d items with %d live items", c.maxSize, len(c.items))
			metrics.CacheOperations.WithLabelValues("set", "over_bound").Inc()
		}
	}

	c.items[key] = &CacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
		TTL:        ttl,
	}

	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	now := time.Now()
	if now.After(item.Expiration) {
		delete(c.items, key)
		metrics.CacheOperations.WithLabelValues("get", "expired").Inc()
		return nil, false
	}
	item.Expiration = now.Add(item.TTL)

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return item.Value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		delete(c.items, key)
		metrics.CacheOperations.WithLabelValues("delete", "success").Inc()
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *Cache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeExpiredLocked(now)
}

func (c *Cache) removeExpiredLocked(now time.Time) {
	for key, item := range c.items {
		if now.After(item.Expiration) {
			delete(c.items, key)
		}
	}
}
