package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/logging"
	"github.com/tactusdev/tactus/internal/memo"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the corpus database")
	last := flag.Int("last", 20, "show N most recent inference runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flushCache := flag.Bool("flush-cache", false, "drop memoized corpus counts (needed after re-importing a dataset under an existing ID)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db tactus.db [--last N] [--json] [--flush-cache]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *jsonOut, *flushCache); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath string, last int, jsonOut, flushCache bool) error {
	store, err := corpus.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open corpus store: %w", err)
	}
	defer store.Close()

	cache, err := memo.NewStoreOn(store.DB())
	if err != nil {
		return fmt.Errorf("open memo cache: %w", err)
	}
	if flushCache {
		if err := cache.Flush(); err != nil {
			return err
		}
		fmt.Println("memo cache flushed")
	}

	datasets, err := store.ListDatasets()
	if err != nil {
		return err
	}
	cacheLen, err := cache.Len()
	if err != nil {
		return err
	}
	if err := logging.Migrate(store.DB()); err != nil {
		return err
	}
	runs, err := logging.ListRuns(store.DB(), last)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"datasets":     datasets,
			"memo_entries": cacheLen,
			"runs":         runs,
		})
	}

	fmt.Printf("datasets (%d):\n", len(datasets))
	for id, n := range datasets {
		fmt.Printf("  %-24s %d sequences\n", id, n)
	}
	fmt.Printf("memo entries: %d\n", cacheLen)
	fmt.Printf("recent runs (%d):\n", len(runs))
	for _, r := range runs {
		fmt.Printf("  %s  %-16s prior=%-9s n=%-4d map=%-8s meanIC=%.4f  %s\n",
			r.RunID[:8], r.TestSequenceID, r.PriorMode, r.Positions, r.MAPCategory, r.MeanIC,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion run
