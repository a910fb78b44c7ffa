package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/finsight-ai/finsight/pkg/models"
)

// Cache is an in-memory key/value store with a uniform TTL and a maximum
// capacity. Eviction is LRU by access-and-insert order. Expiry is checked
// lazily on read; there is no background sweep, so Size can temporarily
// overcount logically-expired entries until they are read or pushed out by
// capacity pressure. That is intended behavior, not a bug.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = most recently used
	entries map[string]*list.Element
	hits    int64
	misses  int64
}

type entry struct {
	key     string
	value   any
	addedAt time.Time
}

// New creates a Cache with the given capacity and TTL.
func New(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the value for key. An expired entry is removed as a side
// effect and reported as a miss, indistinguishable from an absent key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Since(e.addedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Set stores a value for key. An existing key has its value, timestamp, and
// recency position refreshed. Inserting past capacity evicts the
// least-recently-used entry, never the one just inserted.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.addedAt = time.Now()
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value, addedAt: time.Now()})

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Size returns the current number of entries, including any that are
// logically expired but not yet read.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit/miss counters and the entry count.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CacheStats{
		Entries: c.order.Len(),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// Key derives a deterministic cache key from an operation name and its
// arguments: the SHA-256 of the JSON-serialized argument list. Identical
// arguments always produce the same key regardless of call site.
func Key(op string, args ...any) string {
	h := sha256.New()
	h.Write([]byte(op))
	data, _ := json.Marshal(args)
	h.Write(data)
	return fmt.Sprintf("%s:%x", op, h.Sum(nil))
}
