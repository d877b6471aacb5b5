// Package inference wires the full pipeline: corpus counts build the
// prior, per-category models produce likelihoods, the Bayesian filter
// produces the posterior, and the aggregator condenses it into a
// per-category verdict.
package inference

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tactusdev/tactus/internal/aggregate"
	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/dist"
	"github.com/tactusdev/tactus/internal/ensemble"
	"github.com/tactusdev/tactus/internal/filter"
	"github.com/tactusdev/tactus/internal/logging"
	"github.com/tactusdev/tactus/internal/memo"
	"github.com/tactusdev/tactus/internal/prior"
	"github.com/tactusdev/tactus/internal/segment"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// #region config

// Config selects the hypothesis space and how each stage runs.
type Config struct {
	Categories []taxonomy.Category
	PriorMode  prior.Mode
	// CustomCounts feeds prior.ModeCustom; ignored otherwise.
	CustomCounts map[string]float64
	TargetAttrs  []string
	SourceAttrs  []string
	Resampling   ensemble.Resampling
	Segment      segment.Config
}

// DefaultConfig covers the common duple/triple metre hypothesis space.
func DefaultConfig() Config {
	return Config{
		Categories: []taxonomy.Category{
			{Name: "4/4", Resolution: 4},
			{Name: "3/4", Resolution: 3},
			{Name: "6/8", Resolution: 3},
		},
		PriorMode:   prior.ModeEmpirical,
		TargetAttrs: []string{"pitch"},
		SourceAttrs: []string{"pitch"},
		Segment:     segment.DefaultConfig(),
	}
}

// #endregion config

// #region outcome

// Outcome is everything one inference run produces.
type Outcome struct {
	RunID       string
	Prior       *dist.Dist
	Likelihoods *dist.Dist
	Posterior   *dist.Dist
	Evidence    []float64
	InfoContent []float64
	// CategoryMarginal is the time-averaged posterior with phase
	// marginalized out.
	CategoryMarginal *dist.Dist
	MAPCategory      string
	MeanIC           float64
	Elapsed          time.Duration
}

// #endregion outcome

// #region engine

// Engine bundles the injected collaborators: the external predictor, the
// memo cache, and an optional provenance database.
type Engine struct {
	predictor ensemble.Predictor
	cache     memo.Provider
	db        *sql.DB
}

// New wires an engine. cache may be memo.None{}; db may be nil to skip
// provenance.
func New(p ensemble.Predictor, cache memo.Provider, db *sql.DB) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("inference engine: nil predictor")
	}
	if cache == nil {
		cache = memo.None{}
	}
	if db != nil {
		if err := logging.Migrate(db); err != nil {
			return nil, fmt.Errorf("inference engine: %w", err)
		}
	}
	return &Engine{predictor: p, cache: cache, db: db}, nil
}

// #endregion engine

// #region run

// Run infers the metre of the test sequence from the training corpus.
func (e *Engine) Run(source corpus.Source, test corpus.Sequence, cfg Config) (Outcome, error) {
	start := time.Now()
	if len(cfg.Categories) == 0 {
		return Outcome{}, fmt.Errorf("inference: no categories configured")
	}
	if len(cfg.TargetAttrs) == 0 {
		return Outcome{}, fmt.Errorf("inference: no target attributes configured")
	}
	if len(test.Events) == 0 {
		return Outcome{}, fmt.Errorf("inference: test sequence %s is empty", test.ID)
	}

	seqs, err := source.Sequences()
	if err != nil {
		return Outcome{}, fmt.Errorf("inference: load corpus: %w", err)
	}

	pr, err := e.buildPrior(source, cfg)
	if err != nil {
		return Outcome{}, err
	}

	models, err := ensemble.Build(seqs, cfg.Categories, cfg.TargetAttrs, cfg.SourceAttrs, cfg.Resampling, e.predictor, cfg.Segment)
	if err != nil {
		return Outcome{}, fmt.Errorf("inference: %w", err)
	}
	log.Printf("[INFER] trained %d category models on %d sequences", len(models), len(seqs))

	likelihoods, err := ensemble.Predict(models, test, cfg.TargetAttrs[0])
	if err != nil {
		return Outcome{}, fmt.Errorf("inference: %w", err)
	}

	res, err := filter.Run(pr, likelihoods)
	if err != nil {
		return Outcome{}, fmt.Errorf("inference: filter %s: %w", test.ID, err)
	}

	marginal, err := aggregate.MarginalizePhase(aggregate.TimeAverage(res.Posterior))
	if err != nil {
		return Outcome{}, fmt.Errorf("inference: %w", err)
	}

	out := Outcome{
		RunID:            uuid.New().String(),
		Prior:            pr,
		Likelihoods:      likelihoods,
		Posterior:        res.Posterior,
		Evidence:         res.Evidence,
		InfoContent:      res.InfoContent,
		CategoryMarginal: marginal,
		MAPCategory:      mapCategory(marginal),
		MeanIC:           res.MeanInfoContent(),
		Elapsed:          time.Since(start),
	}
	log.Printf("[INFER] run %s: %s over %d positions, map=%s meanIC=%.4f",
		out.RunID[:8], test.ID, len(test.Events), out.MAPCategory, out.MeanIC)

	if e.db != nil {
		if err := e.logRun(source, test, cfg, out); err != nil {
			return Outcome{}, err
		}
	}
	return out, nil
}

func (e *Engine) buildPrior(source corpus.Source, cfg Config) (*dist.Dist, error) {
	var counts map[string]float64
	switch cfg.PriorMode {
	case prior.ModeEmpirical:
		var err error
		counts, err = segment.CountCached(e.cache, source, cfg.Segment)
		if err != nil {
			return nil, fmt.Errorf("inference: count categories: %w", err)
		}
	case prior.ModeCustom:
		counts = cfg.CustomCounts
	}
	pr, err := prior.Build(cfg.PriorMode, counts, cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	return pr, nil
}

func mapCategory(marginal *dist.Dist) string {
	best := ""
	bestP := -1.0
	for _, k := range marginal.Keys() {
		if p := marginal.Prob(k); p > bestP {
			best, bestP = k, p
		}
	}
	return best
}

func (e *Engine) logRun(source corpus.Source, test corpus.Sequence, cfg Config, out Outcome) error {
	catsJSON, err := json.Marshal(cfg.Categories)
	if err != nil {
		return fmt.Errorf("inference: marshal categories: %w", err)
	}
	summary := map[string]float64{}
	for _, k := range out.CategoryMarginal.Keys() {
		summary[k] = out.CategoryMarginal.Prob(k)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("inference: marshal summary: %w", err)
	}
	err = logging.LogRun(e.db, logging.RunEntry{
		RunID:           out.RunID,
		CorpusSignature: source.Signature(),
		TestSequenceID:  test.ID,
		PriorMode:       string(cfg.PriorMode),
		CategoriesJSON:  string(catsJSON),
		Positions:       len(test.Events),
		MeanIC:          out.MeanIC,
		MAPCategory:     out.MAPCategory,
		SummaryJSON:     string(summaryJSON),
	})
	if err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	return nil
}

// #endregion run
