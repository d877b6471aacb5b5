// Package aggregate condenses interpretation-level posteriors into
// interpretable summaries: time averages, position slices, and
// per-category marginals with phase averaged out.
package aggregate

import (
	"fmt"

	"github.com/tactusdev/tactus/internal/dist"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region time-ops

// TimeAverage reduces a time-varying distribution to each key's mean.
func TimeAverage(d *dist.Dist) *dist.Dist {
	return d.Mean()
}

// PositionSlice returns the cross-sectional distribution at position t.
func PositionSlice(d *dist.Dist, t int) (*dist.Dist, error) {
	return d.Slice(t)
}

// #endregion time-ops

// #region marginalize

// MarginalizePhase groups interpretation keys by parent category,
// averages each group over its phases, and renormalizes the category
// values to sum to 1. Input must be static (width 1).
func MarginalizePhase(d *dist.Dist) (*dist.Dist, error) {
	if d.Width() != 1 {
		return nil, fmt.Errorf("marginalize phase: want static distribution, got width %d", d.Width())
	}

	var order []string
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, key := range d.Keys() {
		cat, err := taxonomy.CategoryOf(key)
		if err != nil {
			return nil, fmt.Errorf("marginalize phase: %w", err)
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += d.Prob(key)
		counts[cat]++
	}

	out := dist.New()
	for _, cat := range order {
		if err := out.Append(cat, sums[cat]/float64(counts[cat])); err != nil {
			return nil, fmt.Errorf("marginalize phase: %w", err)
		}
	}
	if err := out.Normalize(); err != nil {
		return nil, fmt.Errorf("marginalize phase: %w", err)
	}
	return out, nil
}

// #endregion marginalize
