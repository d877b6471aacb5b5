// Package filter runs the sequential Bayesian update that turns a prior
// over metre interpretations and per-interpretation likelihood series
// into a time-indexed posterior with per-event information content.
package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tactusdev/tactus/internal/dist"
)

// #region errors

// ZeroEvidenceError reports a position where every hypothesis assigned
// zero likelihood, which makes the update denominator vanish.
type ZeroEvidenceError struct {
	Position int
}

func (e *ZeroEvidenceError) Error() string {
	return fmt.Sprintf("zero evidence at position %d: every hypothesis assigns zero likelihood", e.Position)
}

// KeyMismatchError reports a disagreement between the prior's and the
// likelihoods' interpretation key sets.
type KeyMismatchError struct {
	MissingFromLikelihoods []string
	MissingFromPrior       []string
}

func (e *KeyMismatchError) Error() string {
	var parts []string
	if len(e.MissingFromLikelihoods) > 0 {
		parts = append(parts, fmt.Sprintf("missing from likelihoods: %s", strings.Join(e.MissingFromLikelihoods, ", ")))
	}
	if len(e.MissingFromPrior) > 0 {
		parts = append(parts, fmt.Sprintf("missing from prior: %s", strings.Join(e.MissingFromPrior, ", ")))
	}
	return "prior/likelihood key mismatch: " + strings.Join(parts, "; ")
}

// #endregion errors

// #region result

// Result is the filter output: a posterior row per interpretation key
// (width = test length), the evidence per position, and the information
// content per position.
type Result struct {
	Posterior   *dist.Dist
	Evidence    []float64
	InfoContent []float64
}

// MeanInfoContent is the average surprisal over the test sequence.
func (r Result) MeanInfoContent() float64 {
	if len(r.InfoContent) == 0 {
		return 0
	}
	var sum float64
	for _, ic := range r.InfoContent {
		sum += ic
	}
	return sum / float64(len(r.InfoContent))
}

// #endregion result

// #region run

// Run performs the iterative posterior update. The belief starts at the
// prior; at each position every key's belief is reweighted by its
// likelihood and the joint is renormalized. There is no transition model
// between positions, only the shared renormalization.
//
// The information content at position t is the negative log2 of the
// probability the pre-update mixture assigned to the observed event; it
// is computed from the same float as the update denominator.
func Run(prior, likelihoods *dist.Dist) (Result, error) {
	if err := checkKeys(prior, likelihoods); err != nil {
		return Result{}, err
	}

	keys := prior.Keys()
	n := likelihoods.Width()

	belief := make(map[string]float64, len(keys))
	for _, k := range keys {
		belief[k] = prior.Prob(k)
	}

	rows := make(map[string][]float64, len(keys))
	for _, k := range keys {
		rows[k] = make([]float64, n)
	}
	evidence := make([]float64, n)
	infoContent := make([]float64, n)

	for t := 0; t < n; t++ {
		var ev float64
		for _, k := range keys {
			ev += likelihoods.At(k, t) * belief[k]
		}
		if ev == 0 {
			return Result{}, &ZeroEvidenceError{Position: t}
		}
		evidence[t] = ev
		infoContent[t] = -math.Log2(ev)

		for _, k := range keys {
			belief[k] = likelihoods.At(k, t) * belief[k] / ev
			rows[k][t] = belief[k]
		}
	}

	posterior := dist.New()
	for _, k := range keys {
		if err := posterior.Append(k, rows[k]...); err != nil {
			return Result{}, fmt.Errorf("assemble posterior: %w", err)
		}
	}

	return Result{Posterior: posterior, Evidence: evidence, InfoContent: infoContent}, nil
}

// #endregion run

// #region key-check

func checkKeys(prior, likelihoods *dist.Dist) error {
	var missingFromLik, missingFromPrior []string
	for _, k := range prior.Keys() {
		if !likelihoods.Has(k) {
			missingFromLik = append(missingFromLik, k)
		}
	}
	for _, k := range likelihoods.Keys() {
		if !prior.Has(k) {
			missingFromPrior = append(missingFromPrior, k)
		}
	}
	if len(missingFromLik) > 0 || len(missingFromPrior) > 0 {
		sort.Strings(missingFromLik)
		sort.Strings(missingFromPrior)
		return &KeyMismatchError{
			MissingFromLikelihoods: missingFromLik,
			MissingFromPrior:       missingFromPrior,
		}
	}
	return nil
}

// #endregion key-check
