package segment

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/memo"
)

// #region count-cached

// CountCached memoizes Count per (corpus signature, resolution, texture,
// counting mode). Hits are returned unchanged; entries that fail shape
// validation are treated as misses, recomputed, and overwritten.
func CountCached(provider memo.Provider, source corpus.Source, cfg Config) (map[string]float64, error) {
	key := countKey(source, cfg)

	ok, err := provider.Exists(key)
	if err != nil {
		return nil, fmt.Errorf("count cache lookup: %w", err)
	}
	if ok {
		raw, err := provider.Read(key)
		if err != nil {
			return nil, fmt.Errorf("count cache read: %w", err)
		}
		if mass, valid := decodeCounts(raw); valid {
			return mass, nil
		}
		log.Printf("[SEG] corrupt cached counts for key %s, recomputing", key[:12])
	}

	seqs, err := source.Sequences()
	if err != nil {
		return nil, fmt.Errorf("load corpus for counting: %w", err)
	}
	mass := Count(seqs, cfg)

	raw, err := json.Marshal(mass)
	if err != nil {
		return nil, fmt.Errorf("encode counts: %w", err)
	}
	if err := provider.Write(key, raw); err != nil {
		return nil, fmt.Errorf("count cache write: %w", err)
	}
	return mass, nil
}

func countKey(source corpus.Source, cfg Config) string {
	return memo.Key(
		"category-counts",
		source.Signature(),
		strconv.Itoa(cfg.Resolution),
		string(cfg.Texture),
		strconv.FormatBool(cfg.PerComposition),
	)
}

// decodeCounts validates that a cached value is a flat map of
// non-negative finite masses.
func decodeCounts(raw []byte) (map[string]float64, bool) {
	var mass map[string]float64
	if err := json.Unmarshal(raw, &mass); err != nil {
		return nil, false
	}
	if mass == nil {
		return nil, false
	}
	for _, v := range mass {
		if v < 0 {
			return nil, false
		}
	}
	return mass, true
}

// #endregion count-cached
