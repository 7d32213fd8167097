package storage

import (
	"container/list"
	"sync"
	"time"

	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
)

// DefaultSearchCacheTTL is the Search Cache's default entry lifetime (§4.6).
const DefaultSearchCacheTTL = 300 * time.Second

// DefaultSearchCacheMaxEntries is the bound before eviction kicks in.
const DefaultSearchCacheMaxEntries = 100

// SearchKey identifies one cached search result.
type SearchKey struct {
	Path  string
	Query string
	Mode  match.Mode
}

type searchEntry struct {
	key       SearchKey
	records   []record.Record
	insertedAt time.Time
	ttl       time.Duration
	elem      *list.Element
}

func (e *searchEntry) expired(now time.Time) bool {
	return now.After(e.insertedAt.Add(e.ttl))
}

// SearchCache is a process-wide map from (path, query, mode) to matching
// Records, with TTL expiry and size-bounded eviction. Grounded on the
// teacher's map+mutex cache shape, combined with raciott-FinKV's
// container/list insertion-ordering idiom for bounded eviction — adapted
// here to evict expired entries first, then oldest-inserted, per spec,
// rather than pure LRU access-order eviction.
type SearchCache struct {
	mu         sync.Mutex
	entries    map[SearchKey]*searchEntry
	order      *list.List // front = oldest inserted
	ttl        time.Duration
	maxEntries int
}

// NewSearchCache constructs a SearchCache with the given ttl and maxEntries
// (defaults applied when <= 0).
func NewSearchCache(ttl time.Duration, maxEntries int) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultSearchCacheMaxEntries
	}
	return &SearchCache{
		entries:    make(map[SearchKey]*searchEntry),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached records for key if present and unexpired.
func (c *SearchCache) Get(key SearchKey) ([]record.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, false
	}
	return cloneAll(e.records), true
}

// Put stores records under key. When the cache exceeds maxEntries, expired
// entries are evicted first, then oldest-inserted entries until size is
// back within bounds (§4.6).
func (c *SearchCache) Put(key SearchKey, records []record.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.order.Remove(existing.elem)
		delete(c.entries, key)
	}

	e := &searchEntry{key: key, records: cloneAll(records), insertedAt: time.Now(), ttl: c.ttl}
	e.elem = c.order.PushBack(e)
	c.entries[key] = e

	c.evictIfNeeded()
}

func (c *SearchCache) evictIfNeeded() {
	if len(c.entries) <= c.maxEntries {
		return
	}

	now := time.Now()
	for elem := c.order.Front(); elem != nil && len(c.entries) > c.maxEntries; {
		next := elem.Next()
		e := elem.Value.(*searchEntry)
		if e.expired(now) {
			c.order.Remove(elem)
			delete(c.entries, e.key)
		}
		elem = next
	}

	for len(c.entries) > c.maxEntries {
		front := c.order.Front()
		if front == nil {
			break
		}
		e := front.Value.(*searchEntry)
		c.order.Remove(front)
		delete(c.entries, e.key)
	}
}

// Len returns the current number of cached entries, expired or not.
func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetMaxEntries updates the eviction bound, trimming oldest-inserted entries
// immediately if the new bound is smaller than the current size. Safe to
// call concurrently with Get/Put; used by the config watcher to apply a
// changed search_cache.max_entries without restarting the server.
func (c *SearchCache) SetMaxEntries(maxEntries int) {
	if maxEntries <= 0 {
		maxEntries = DefaultSearchCacheMaxEntries
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxEntries = maxEntries
	c.evictIfNeeded()
}

// Invalidate removes every entry whose key's path equals path.
func (c *SearchCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*searchEntry)
		if e.key.Path == path {
			c.order.Remove(elem)
			delete(c.entries, e.key)
		}
		elem = next
	}
}

// Clear drops all entries.
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[SearchKey]*searchEntry)
	c.order = list.New()
}
