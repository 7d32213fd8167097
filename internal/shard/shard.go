// Package shard implements the Shard Planner (C5): splitting a Record
// sequence into up to N contiguous, order-preserving chunks for the Search
// Executor's parallel path.
package shard

import "runtime"

// Split partitions records into up to n contiguous, roughly-equal chunks,
// preserving overall order. If n <= 0, n defaults to runtime.NumCPU().
// Grounded on the original source's split_nodes (chunk_size = ceil(len/n)).
func Split[T any](records []T, n int) [][]T {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	total := len(records)
	if total == 0 {
		return nil
	}
	if n > total {
		n = total
	}
	chunkSize := (total + n - 1) / n
	shards := make([][]T, 0, n)
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		shards = append(shards, records[start:end])
	}
	return shards
}
