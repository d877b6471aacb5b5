// Package prior builds the initial distribution over metre
// interpretations from corpus counts.
package prior

import (
	"fmt"

	"github.com/tactusdev/tactus/internal/dist"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region mode

// Mode selects how the prior is constructed.
type Mode string

const (
	ModeEmpirical Mode = "empirical"
	ModeFlat      Mode = "flat"
	ModeCustom    Mode = "custom"
)

// #endregion mode

// #region empirical

// Empirical turns per-category corpus mass into a prior over
// interpretations. Each interpretation inherits its category's full
// probability before the final renormalization, so categories with more
// phases carry proportionally more total prior mass. That skew is
// deliberate and pinned by tests; see DESIGN.md before changing it.
func Empirical(counts map[string]float64, cats []taxonomy.Category) (*dist.Dist, error) {
	var total float64
	for _, c := range cats {
		total += counts[c.Name]
	}
	if total == 0 {
		return nil, fmt.Errorf("empirical prior: zero total mass over %d categories", len(cats))
	}

	d := dist.New()
	for _, c := range cats {
		catProb := counts[c.Name] / total
		for _, in := range taxonomy.Enumerate(c) {
			if err := d.Append(in.Key(), catProb); err != nil {
				return nil, fmt.Errorf("empirical prior: %w", err)
			}
		}
	}
	if err := d.Normalize(); err != nil {
		return nil, fmt.Errorf("empirical prior: %w", err)
	}
	return d, nil
}

// #endregion empirical

// #region flat

// Flat gives every interpretation of every category equal mass.
func Flat(cats []taxonomy.Category) (*dist.Dist, error) {
	total := taxonomy.TotalInterpretations(cats)
	if total == 0 {
		return nil, fmt.Errorf("flat prior: no categories")
	}
	d := dist.New()
	p := 1 / float64(total)
	for _, c := range cats {
		for _, in := range taxonomy.Enumerate(c) {
			if err := d.Append(in.Key(), p); err != nil {
				return nil, fmt.Errorf("flat prior: %w", err)
			}
		}
	}
	return d, nil
}

// #endregion flat

// #region custom

// Custom applies the empirical construction to caller-supplied counts.
func Custom(counts map[string]float64, cats []taxonomy.Category) (*dist.Dist, error) {
	return Empirical(counts, cats)
}

// #endregion custom

// #region build

// Build dispatches on mode. Empirical and custom modes require counts.
func Build(mode Mode, counts map[string]float64, cats []taxonomy.Category) (*dist.Dist, error) {
	switch mode {
	case ModeEmpirical:
		return Empirical(counts, cats)
	case ModeFlat:
		return Flat(cats)
	case ModeCustom:
		return Custom(counts, cats)
	}
	return nil, fmt.Errorf("unknown prior mode %q", mode)
}

// #endregion build
