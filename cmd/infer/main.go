package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/inference"
	"github.com/tactusdev/tactus/internal/memo"
	"github.com/tactusdev/tactus/internal/ngram"
	"github.com/tactusdev/tactus/internal/prior"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region main

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("TACTUS_DB", "tactus.db"), "path to the corpus database")
	trainSets := flag.String("train", "", "comma-separated training dataset IDs")
	testSet := flag.String("test-dataset", "", "dataset holding the test sequence")
	testID := flag.String("test-id", "", "test sequence ID")
	catsSpec := flag.String("categories", envOr("TACTUS_CATEGORIES", "4/4:4,3/4:3,6/8:3"), "categories as name:resolution,...")
	priorMode := flag.String("prior", "empirical", "prior mode: empirical | flat | custom")
	target := flag.String("target", "pitch", "target attribute")
	flag.Parse()

	if *trainSets == "" || *testSet == "" || *testID == "" {
		fmt.Fprintln(os.Stderr, "usage: infer --db tactus.db --train chorales --test-dataset probes --test-id seq-001 [--categories 4/4:4,3/4:3] [--prior empirical] [--target pitch]")
		os.Exit(2)
	}

	if err := run(*dbPath, *trainSets, *testSet, *testID, *catsSpec, *priorMode, *target); err != nil {
		log.Fatalf("infer: %v", err)
	}
}

// #endregion main

// #region run

func run(dbPath, trainSets, testSet, testID, catsSpec, priorMode, target string) error {
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

	test, err := findSequence(store, testSet, testID)
	if err != nil {
		return err
	}

	cfg := inference.DefaultConfig()
	cfg.Categories = cats
	cfg.PriorMode = prior.Mode(priorMode)
	cfg.TargetAttrs = []string{target}
	cfg.SourceAttrs = []string{target}

	source := corpus.NewStoreSource(store, strings.Split(trainSets, ",")...)
	out, err := engine.Run(source, test, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %s (%d events)\n", out.RunID, test.ID, len(test.Events))
	fmt.Printf("  mean information content: %.4f bits/event\n", out.MeanIC)
	fmt.Println("  category probabilities:")
	for _, cat := range out.CategoryMarginal.Keys() {
		marker := "  "
		if cat == out.MAPCategory {
			marker = "* "
		}
		fmt.Printf("    %s%-8s %.4f\n", marker, cat, out.CategoryMarginal.Prob(cat))
	}
	return nil
}

func findSequence(store *corpus.Store, dataset, id string) (corpus.Sequence, error) {
	seqs, err := store.GetSequences([]string{dataset})
	if err != nil {
		return corpus.Sequence{}, fmt.Errorf("load test dataset %s: %w", dataset, err)
	}
	for _, seq := range seqs {
		if seq.ID == id {
			return seq, nil
		}
	}
	return corpus.Sequence{}, fmt.Errorf("sequence %s not found in dataset %s", id, dataset)
}

// #endregion run

// #region helpers

// parseCategories parses "4/4:4,3/4:3" into categories. The resolution
// follows the last colon so category names may contain colons.
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
