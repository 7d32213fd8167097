package storage

import (
	"testing"
	"time"

	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
)

func TestSearchCacheGetPut(t *testing.T) {
	c := NewSearchCache(time.Minute, 100)
	key := SearchKey{Path: "/a/db1.json", Query: "ada", Mode: match.ModeDefault}

	if _, ok := c.Get(key); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put(key, []record.Record{{"name": "Ada"}})
	got, ok := c.Get(key)
	if !ok || len(got) != 1 {
		t.Fatalf("expected hit with 1 record, got ok=%v records=%v", ok, got)
	}
}

func TestSearchCacheInvalidateByPath(t *testing.T) {
	c := NewSearchCache(time.Minute, 100)
	k1 := SearchKey{Path: "/a/db1.json", Query: "x", Mode: match.ModeDefault}
	k2 := SearchKey{Path: "/a/db2.json", Query: "x", Mode: match.ModeDefault}
	c.Put(k1, []record.Record{{"a": 1.0}})
	c.Put(k2, []record.Record{{"a": 2.0}})

	c.Invalidate("/a/db1.json")

	if _, ok := c.Get(k1); ok {
		t.Error("expected k1 invalidated")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("expected k2 to survive invalidation of a different path")
	}
}

func TestSearchCacheEvictsOldestOverCapacity(t *testing.T) {
	c := NewSearchCache(time.Minute, 2)
	c.Put(SearchKey{Path: "/a", Query: "1"}, []record.Record{{"a": 1.0}})
	c.Put(SearchKey{Path: "/a", Query: "2"}, []record.Record{{"a": 2.0}})
	c.Put(SearchKey{Path: "/a", Query: "3"}, []record.Record{{"a": 3.0}})

	if _, ok := c.Get(SearchKey{Path: "/a", Query: "1"}); ok {
		t.Error("expected oldest entry to be evicted once capacity exceeded")
	}
	if _, ok := c.Get(SearchKey{Path: "/a", Query: "3"}); !ok {
		t.Error("expected newest entry to survive")
	}
}

func TestSearchCacheExpiredEntriesEvictedFirst(t *testing.T) {
	c := NewSearchCache(time.Nanosecond, 1)
	c.Put(SearchKey{Path: "/a", Query: "stale"}, []record.Record{{"a": 1.0}})
	time.Sleep(time.Millisecond)
	c.Put(SearchKey{Path: "/a", Query: "fresh"}, []record.Record{{"a": 2.0}})

	if _, ok := c.Get(SearchKey{Path: "/a", Query: "stale"}); ok {
		t.Error("expected stale entry expired")
	}
}

func TestSearchCacheSetMaxEntriesShrinksImmediately(t *testing.T) {
	c := NewSearchCache(time.Minute, 5)
	for i := 0; i < 5; i++ {
		c.Put(SearchKey{Path: "/a", Query: string(rune('a' + i))}, []record.Record{{"a": i}})
	}
	if c.Len() != 5 {
		t.Fatalf("expected 5 entries before shrink, got %d", c.Len())
	}

	c.SetMaxEntries(2)

	if c.Len() != 2 {
		t.Errorf("expected cache trimmed to 2 entries after SetMaxEntries, got %d", c.Len())
	}
	if _, ok := c.Get(SearchKey{Path: "/a", Query: "a"}); ok {
		t.Error("expected oldest entry evicted by SetMaxEntries")
	}
	if _, ok := c.Get(SearchKey{Path: "/a", Query: "e"}); !ok {
		t.Error("expected newest entry to survive SetMaxEntries")
	}
}
