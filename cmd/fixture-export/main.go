package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/filter"
	"github.com/tactusdev/tactus/internal/inference"
	"github.com/tactusdev/tactus/internal/memo"
	"github.com/tactusdev/tactus/internal/ngram"
	"github.com/tactusdev/tactus/internal/replay"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region main

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", "", "path to the corpus database")
	trainSets := flag.String("train", "", "comma-separated training dataset IDs")
	testSet := flag.String("test-dataset", "", "dataset holding the test sequence")
	testID := flag.String("test-id", "", "test sequence ID")
	catsSpec := flag.String("categories", "4/4:4,3/4:3,6/8:3", "categories as name:resolution,...")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *trainSets == "" || *testSet == "" || *testID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db tactus.db --train chorales --test-dataset probes --test-id seq-001 --out fixture.json")
		os.Exit(2)
	}

	if err := run(*dbPath, *trainSets, *testSet, *testID, *catsSpec, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath, trainSets, testSet, testID, catsSpec, outPath string) error {
	cats, err := parseCategories(catsSpec)
	if err != nil {
		return err
	}

	store, err := corpus.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open corpus store: %w", err)
	}
	defer store.Close()

	cache, err := memo.NewStoreOn(store.DB())
	if err != nil {
		return fmt.Errorf("open memo cache: %w", err)
	}
	engine, err := inference.New(ngram.Predictor{}, cache, store.DB())
	if err != nil {
		return err
	}

	seqs, err := store.GetSequences([]string{testSet})
	if err != nil {
		return fmt.Errorf("load test dataset %s: %w", testSet, err)
	}
	var test corpus.Sequence
	found := false
	for _, seq := range seqs {
		if seq.ID == testID {
			test, found = seq, true
			break
		}
	}
	if !found {
		return fmt.Errorf("sequence %s not found in dataset %s", testID, testSet)
	}

	cfg := inference.DefaultConfig()
	cfg.Categories = cats
	out, err := engine.Run(corpus.NewStoreSource(store, strings.Split(trainSets, ",")...), test, cfg)
	if err != nil {
		return err
	}

	fixture := replay.Export(
		fmt.Sprintf("run %s: %s", out.RunID[:8], test.ID),
		out.Prior, out.Likelihoods,
		filter.Result{Posterior: out.Posterior, Evidence: out.Evidence, InfoContent: out.InfoContent},
	)
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", outPath, err)
	}
	fmt.Printf("wrote %s (%d keys, %d positions)\n", outPath, out.Posterior.Len(), out.Posterior.Width())
	return nil
}

// #endregion run

// #region helpers

func parseCategories(spec string) ([]taxonomy.Category, error) {
	var cats []taxonomy.Category
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("malformed category %q, want name:resolution", part)
		}
		res, err := strconv.Atoi(part[idx+1:])
		if err != nil || res < 1 {
			return nil, fmt.Errorf("malformed resolution in %q", part)
		}
		cats = append(cats, taxonomy.Category{Name: part[:idx], Resolution: res})
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("no categories in %q", spec)
	}
	return cats, nil
}

// #endregion helpers
