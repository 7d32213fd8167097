// Package crud implements the CRUD Engine (C8): insert, get, update-by-query,
// update-by-id, delete-by-query, and stats, wiring the File Store, File
// Cache, Search Cache, Matcher, and Search Executor together and owning the
// per-path write-serialization lock described in spec §5.
package crud

import (
	"context"
	"sync"
	"time"

	"github.com/sarychdb/sarychdb/internal/apierrors"
	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
	"github.com/sarychdb/sarychdb/internal/search"
	"github.com/sarychdb/sarychdb/internal/storage"
)

// Engine is the CRUD Engine. One Engine instance is shared by the whole
// process; its File Cache and Search Cache are themselves process-wide,
// matching §5's shared-resource model.
type Engine struct {
	store       *storage.FileStore
	fileCache   *storage.FileCache
	searchCache *storage.SearchCache

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

// New constructs a CRUD Engine over the given File Store and caches.
func New(store *storage.FileStore, fileCache *storage.FileCache, searchCache *storage.SearchCache) *Engine {
	return &Engine{
		store:       store,
		fileCache:   fileCache,
		searchCache: searchCache,
		locks:       make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// pathLock returns the exclusive mutex for path, creating it on first use.
// Locks live as long as the process (§5): with no multi-path write
// operation, acquiring at most one lock per call makes deadlock structurally
// impossible.
func (e *Engine) pathLock(path string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	l, ok := e.locks[path]
	if !ok {
		l = &sync.Mutex{}
		e.locks[path] = l
	}
	return l
}

// Insert appends record to the database at path, assigning _id and
// _created_at, then saves, replaces the File Cache entry for path with the
// saved records, and invalidates the Search Cache for path.
func (e *Engine) Insert(path string, fields map[string]any) (record.Record, error) {
	if fields == nil {
		return nil, apierrors.BadRequest("record must be a JSON object")
	}

	lock := e.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return nil, err
	}

	r := record.New(fields, e.now())
	records = append(records, r)

	if err := e.store.Save(path, records); err != nil {
		return nil, err
	}
	e.fileCache.Put(path, records)
	e.searchCache.Invalidate(path)

	return r, nil
}

// Get resolves query/mode against the database at path, serving from the
// Search Cache when possible.
func (e *Engine) Get(ctx context.Context, path, query string, mode match.Mode) ([]record.Record, error) {
	key := storage.SearchKey{Path: path, Query: query, Mode: mode}
	if cached, ok := e.searchCache.Get(key); ok {
		return cached, nil
	}

	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return nil, err
	}

	matched, err := search.Run(ctx, records, query, mode)
	if err != nil {
		return nil, err
	}
	e.searchCache.Put(key, matched)
	return matched, nil
}

// UpdateByQuery applies patch to every record matching query/mode, stamping
// _updated_at on each, and returns the number of records updated.
func (e *Engine) UpdateByQuery(path, query string, mode match.Mode, patch map[string]any) (int, error) {
	lock := e.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return 0, err
	}

	now := e.now()
	updated := 0
	for _, r := range records {
		if match.Match(map[string]any(r), query, mode) {
			r.ApplyPatch(patch, now)
			updated++
		}
	}

	if err := e.store.Save(path, records); err != nil {
		return 0, err
	}
	e.fileCache.Put(path, records)
	e.searchCache.Invalidate(path)

	return updated, nil
}

// UpdateByID applies patch to the at-most-one record whose _id equals id.
// Returns 1 if found and updated, 0 otherwise.
func (e *Engine) UpdateByID(path, id string, patch map[string]any) (int, error) {
	lock := e.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return 0, err
	}

	now := e.now()
	found := 0
	for _, r := range records {
		if r.ID() == id {
			r.ApplyPatch(patch, now)
			found = 1
			break
		}
	}
	if found == 0 {
		return 0, nil
	}

	if err := e.store.Save(path, records); err != nil {
		return 0, err
	}
	e.fileCache.Put(path, records)
	e.searchCache.Invalidate(path)

	return found, nil
}

// DeleteByQuery removes every record matching query/mode, preserving the
// order of survivors, and returns the count removed.
func (e *Engine) DeleteByQuery(path, query string, mode match.Mode) (int, error) {
	lock := e.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return 0, err
	}

	survivors := make([]record.Record, 0, len(records))
	removed := 0
	for _, r := range records {
		if match.Match(map[string]any(r), query, mode) {
			removed++
			continue
		}
		survivors = append(survivors, r)
	}

	if err := e.store.Save(path, survivors); err != nil {
		return 0, err
	}
	e.fileCache.Put(path, survivors)
	e.searchCache.Invalidate(path)

	return removed, nil
}

// Stats reports total_records, size_bytes, read_time_ms, and cached for the
// database at path.
type Stats struct {
	TotalRecords int   `json:"total_records"`
	SizeBytes    int64 `json:"size_bytes"`
	ReadTimeMS   int64 `json:"read_time_ms"`
	Cached       bool  `json:"cached"`
}

// Stats returns stats for the database at path.
func (e *Engine) Stats(path string) (Stats, error) {
	records, size, readMS, cached, err := e.fileCache.GetOrLoad(path)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalRecords: len(records),
		SizeBytes:    size,
		ReadTimeMS:   readMS,
		Cached:       cached,
	}, nil
}

// Records loads the current records for path via the File Cache, for use by
// the List/Browse Pipeline which bypasses the Search Cache entirely (§4.8).
func (e *Engine) Records(path string) ([]record.Record, error) {
	records, _, _, _, err := e.fileCache.GetOrLoad(path)
	return records, err
}
