// Package search implements the Search Executor (C6): adaptive sequential
// vs parallel evaluation of the Matcher across CPU-sized shards.
package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
	"github.com/sarychdb/sarychdb/internal/shard"
)

// ParallelThreshold is the dataset-size heuristic at or above which Run switches
// from sequential to sharded parallel evaluation. Per spec §9, implementers
// may tune this constant; it must not change the observable result order.
const ParallelThreshold = 1000

// Run evaluates the Matcher over records for query under mode, returning
// matches in database order. An empty query returns all records without
// invoking the Matcher.
func Run(ctx context.Context, records []record.Record, query string, mode match.Mode) ([]record.Record, error) {
	if query == "" {
		out := make([]record.Record, len(records))
		copy(out, records)
		return out, nil
	}
	if len(records) < ParallelThreshold {
		return sequential(records, query, mode), nil
	}
	return parallel(ctx, records, query, mode)
}

func sequential(records []record.Record, query string, mode match.Mode) []record.Record {
	var out []record.Record
	for _, r := range records {
		if match.Match(map[string]any(r), query, mode) {
			out = append(out, r)
		}
	}
	return out
}

// parallel shards records and evaluates each shard concurrently via
// errgroup, then concatenates matches in shard order so the result is
// identical to the sequential path (§8 property 4).
func parallel(ctx context.Context, records []record.Record, query string, mode match.Mode) ([]record.Record, error) {
	shards := shard.Split(records, 0)
	results := make([][]record.Record, len(shards))

	g, _ := errgroup.WithContext(ctx)
	for i, s := range shards {
		i, s := i, s
		g.Go(func() error {
			results[i] = sequential(s, query, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []record.Record
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
