// Package ensemble trains one sequence predictor per metre category and
// evaluates a test sequence under every interpretation, producing the
// likelihood series the Bayesian filter consumes.
package ensemble

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/dist"
	"github.com/tactusdev/tactus/internal/segment"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region predictor-boundary

// Resampling carries the cross-validation fold parameters handed through
// to the predictor, so it can select consistent long-term model caches.
type Resampling struct {
	Fold  int
	Count int
}

// AttrSeries is one target attribute's predictive probabilities, one per
// test-sequence position.
type AttrSeries struct {
	Attr  string
	Probs []float64
}

// Model is a trained sequence predictor. Predict scores a test sequence
// under an interpretation context; with predictOnly set the model must
// not learn from the test sequence.
type Model interface {
	Predict(test corpus.Sequence, interp taxonomy.Interpretation, predictOnly bool) ([]AttrSeries, error)
}

// Predictor is the external model boundary: it consumes a training
// subsequence set and returns an immutable Model.
type Predictor interface {
	Train(train []corpus.Sequence, sourceAttrs, targetAttrs []string, rs Resampling) (Model, error)
}

// #endregion predictor-boundary

// #region category-model

// CategoryModel binds a trained Model to the category whose subsequences
// trained it. Immutable after Build.
type CategoryModel struct {
	ID       string
	Category taxonomy.Category
	Model    Model
}

// #endregion category-model

// #region build

// Build trains one model per category on that category's contiguous
// corpus runs. A category with no training material is an error naming
// the category.
func Build(seqs []corpus.Sequence, cats []taxonomy.Category, targetAttrs, sourceAttrs []string, rs Resampling, p Predictor, segCfg segment.Config) ([]CategoryModel, error) {
	if len(targetAttrs) == 0 {
		return nil, fmt.Errorf("ensemble build: no target attributes")
	}
	models := make([]CategoryModel, 0, len(cats))
	for _, cat := range cats {
		train := segment.Segment(seqs, cat.Name, segCfg)
		if len(train) == 0 {
			return nil, fmt.Errorf("ensemble build: category %q has no training material", cat.Name)
		}
		m, err := p.Train(train, sourceAttrs, targetAttrs, rs)
		if err != nil {
			return nil, fmt.Errorf("ensemble build: train %q: %w", cat.Name, err)
		}
		models = append(models, CategoryModel{
			ID:       uuid.New().String(),
			Category: cat,
			Model:    m,
		})
	}
	return models, nil
}

// #endregion build

// #region predict

// Predict evaluates the test sequence under every interpretation of every
// model's category, predict-only, and collects the per-position
// likelihood series keyed by interpretation. Only the first target
// attribute's series is retained per interpretation; combining multiple
// target attributes is intentionally unimplemented (see DESIGN.md).
func Predict(models []CategoryModel, test corpus.Sequence, targetAttr string) (*dist.Dist, error) {
	likelihoods := dist.New()
	for _, cm := range models {
		for _, interp := range taxonomy.Enumerate(cm.Category) {
			series, err := cm.Model.Predict(test, interp, true)
			if err != nil {
				return nil, fmt.Errorf("ensemble predict: %s under %s: %w", test.ID, interp.Key(), err)
			}
			probs, err := firstAttrSeries(series, targetAttr, len(test.Events))
			if err != nil {
				return nil, fmt.Errorf("ensemble predict: %s under %s: %w", test.ID, interp.Key(), err)
			}
			if err := likelihoods.Append(interp.Key(), probs...); err != nil {
				return nil, fmt.Errorf("ensemble predict: %w", err)
			}
		}
	}
	return likelihoods, nil
}

func firstAttrSeries(series []AttrSeries, targetAttr string, n int) ([]float64, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("predictor returned no attribute series")
	}
	first := series[0]
	if first.Attr != targetAttr {
		return nil, fmt.Errorf("predictor returned attribute %q, want %q first", first.Attr, targetAttr)
	}
	if len(first.Probs) != n {
		return nil, fmt.Errorf("predictor returned %d probabilities for %d positions", len(first.Probs), n)
	}
	return first.Probs, nil
}

// #endregion predict
