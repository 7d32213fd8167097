package storage

import (
	"sync"
	"time"

	"github.com/sarychdb/sarychdb/internal/record"
)

// DefaultFileCacheTTL is the File Cache's default entry lifetime (§4.2).
const DefaultFileCacheTTL = 300 * time.Second

type fileCacheEntry struct {
	records  []record.Record
	loadedAt time.Time
	ttl      time.Duration
}

func (e *fileCacheEntry) expired(now time.Time) bool {
	return now.After(e.loadedAt.Add(e.ttl))
}

// FileCache is a process-wide map from absolute file path to the last
// loaded Record sequence, with TTL expiry. Grounded on the teacher's
// internal/storage/cache.go (sync.RWMutex-guarded map), generalized from
// full-clear-at-capacity eviction to per-entry TTL expiry.
type FileCache struct {
	mu      sync.RWMutex
	entries map[string]*fileCacheEntry
	store   *FileStore
	ttl     time.Duration
}

// NewFileCache constructs a FileCache backed by store, using ttl for new
// entries (DefaultFileCacheTTL if ttl <= 0).
func NewFileCache(store *FileStore, ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = DefaultFileCacheTTL
	}
	return &FileCache{
		entries: make(map[string]*fileCacheEntry),
		store:   store,
		ttl:     ttl,
	}
}

// GetOrLoad returns the records for path, serving from cache on a fresh hit
// or loading via the FileStore on a miss or expiry. The returned slice (and
// every Record within it) is a clone so callers may mutate freely. cached
// reports whether the cache served the request, and readMS/sizeBytes
// reflect the underlying load when a miss occurred (0 on a cache hit, per
// spec §9 open question 3).
func (c *FileCache) GetOrLoad(path string) (records []record.Record, sizeBytes int64, readMS int64, cached bool, err error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && !entry.expired(now) {
		return cloneAll(entry.records), 0, 0, true, nil
	}

	loaded, size, ms, err := c.store.Load(path)
	if err != nil {
		return nil, 0, 0, false, err
	}

	c.mu.Lock()
	c.entries[path] = &fileCacheEntry{records: cloneAll(loaded), loadedAt: now, ttl: c.ttl}
	c.mu.Unlock()

	return cloneAll(loaded), size, ms, false, nil
}

// Put installs records as the cached snapshot for path, used by the CRUD
// Engine immediately after a successful save so the next read observes the
// new state without re-hitting disk.
func (c *FileCache) Put(path string, records []record.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = &fileCacheEntry{records: cloneAll(records), loadedAt: time.Now(), ttl: c.ttl}
}

// Invalidate removes the cache entry for path, if present.
func (c *FileCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Clear drops all entries.
func (c *FileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*fileCacheEntry)
}

func cloneAll(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
