package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
	"github.com/sarychdb/sarychdb/internal/search"
)

// runBenchmark mirrors the original source's run_benchmark_mode: build a
// scratch dataset, then time sequential vs. parallel search over it for a
// fixed set of queries. It runs against an in-memory dataset rather than a
// 500MB.json fixture, since the benchmark's purpose here is to characterize
// this Go build's search executor, not to reproduce a specific file.
func runBenchmark(args []string) error {
	fs := flag.NewFlagSet("run benchmark", flag.ContinueOnError)
	numRecords := fs.Int("records", 200000, "Number of synthetic records to search over")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Loading synthetic benchmark dataset...")
	records := generateBenchmarkRecords(*numRecords)
	fmt.Printf("Total records: %d\n", len(records))

	queries := []string{"P1605", "product-42", "nonexistent-marker"}
	ctx := context.Background()

	// Below search.ParallelThreshold, Run takes the sequential path; the full
	// set takes the sharded parallel path. Comparing the two exercises both
	// strategies the way the original benchmark compared its own.
	below := records[:min(search.ParallelThreshold-1, len(records))]

	for _, query := range queries {
		fmt.Printf("\nBenchmark for query %q\n", query)

		start := time.Now()
		seq, err := search.Run(ctx, below, query, match.ModeDefault)
		if err != nil {
			return err
		}
		seqElapsed := time.Since(start)

		start = time.Now()
		par, err := search.Run(ctx, records, query, match.ModeDefault)
		if err != nil {
			return err
		}
		parElapsed := time.Since(start)

		fmt.Printf("Sequential (%d records): %d results in %s\n", len(below), len(seq), seqElapsed)
		fmt.Printf("Parallel (%d records): %d results in %s\n", len(records), len(par), parElapsed)
	}
	return nil
}

func generateBenchmarkRecords(n int) []record.Record {
	records := make([]record.Record, n)
	for i := range n {
		records[i] = record.Record{
			"_id":  fmt.Sprintf("bench-%d", i),
			"name": fmt.Sprintf("product-%d", i%1000),
			"code": fmt.Sprintf("P%04d", i%9999),
		}
	}
	return records
}
