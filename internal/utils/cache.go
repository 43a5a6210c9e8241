package utils

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntries bounds the detail cache. Entries past this are evicted LRU;
// staleness is handled separately by the per-entry TTL.
const cacheEntries = 500

type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a process-local TTL+LRU store for hot detail responses. Expired
// entries are dropped lazily on read.
type Cache struct {
	entries *lru.Cache[string, cacheItem]
}

var (
	cacheInstance *Cache
	cacheOnce     sync.Once
)

// GetCache returns the shared cache.
func GetCache() *Cache {
	cacheOnce.Do(func() {
		l, err := lru.New[string, cacheItem](cacheEntries)
		if err != nil {
			log.Fatalf("create LRU cache: %v", err)
		}
		cacheInstance = &Cache{entries: l}
	})
	return cacheInstance
}

// Set stores data under key for ttl.
func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.entries.Add(key, cacheItem{data: data, expiresAt: time.Now().Add(ttl)})
}

// Get returns the cached data, or nil if missing or expired.
func (c *Cache) Get(key string) interface{} {
	item, ok := c.entries.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(item.expiresAt) {
		c.entries.Remove(key)
		return nil
	}
	return item.data
}

// Delete drops key, typically after a write invalidates the cached detail.
func (c *Cache) Delete(key string) {
	c.entries.Remove(key)
}
