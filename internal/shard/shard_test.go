package shard

import "testing"

func TestSplitPreservesOrderAndCoverage(t *testing.T) {
	records := make([]int, 107)
	for i := range records {
		records[i] = i
	}
	shards := Split(records, 4)
	if len(shards) > 4 {
		t.Fatalf("expected at most 4 shards, got %d", len(shards))
	}
	var flat []int
	for _, s := range shards {
		flat = append(flat, s...)
	}
	if len(flat) != len(records) {
		t.Fatalf("expected %d records total, got %d", len(records), len(flat))
	}
	for i, v := range flat {
		if v != i {
			t.Fatalf("order not preserved at index %d: got %d", i, v)
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	if shards := Split[int](nil, 4); shards != nil {
		t.Errorf("expected nil shards for empty input, got %v", shards)
	}
}

func TestSplitFewerRecordsThanN(t *testing.T) {
	shards := Split([]int{1, 2}, 8)
	if len(shards) != 2 {
		t.Fatalf("expected 2 shards when records < n, got %d", len(shards))
	}
}

func TestSplitZeroUsesNumCPU(t *testing.T) {
	records := []int{1, 2, 3, 4, 5}
	shards := Split(records, 0)
	if len(shards) == 0 {
		t.Fatal("expected at least one shard")
	}
}
