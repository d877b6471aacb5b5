// Package ngram is the in-process reference implementation of the
// ensemble predictor boundary: a position-aware n-gram model over a
// symbolized target attribute. It exists so the binaries run end to end
// without an external model service; callers with a stronger predictor
// plug it in behind ensemble.Predictor.
package ngram

import (
	"fmt"
	"log"
	"strconv"

	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/ensemble"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// unseenSymbol stands in for events whose target attribute is absent.
const unseenSymbol = "∅"

// #region predictor

// Predictor trains position-aware n-gram models. The zero value is
// usable.
type Predictor struct{}

// Train symbolizes each training run and returns an immutable model over
// those symbol lists. With rs.Count > 1, sequences whose index falls in
// rs.Fold are held out, so the same fold split selects the same model
// across runs.
func (Predictor) Train(train []corpus.Sequence, sourceAttrs, targetAttrs []string, rs ensemble.Resampling) (ensemble.Model, error) {
	if len(targetAttrs) == 0 {
		return nil, fmt.Errorf("ngram train: no target attributes")
	}
	attr := targetAttrs[0]

	var runs [][]string
	vocab := map[string]bool{}
	for i, seq := range train {
		if rs.Count > 1 && i%rs.Count == rs.Fold {
			continue
		}
		syms := symbolize(seq, attr)
		if len(syms) == 0 {
			continue
		}
		runs = append(runs, syms)
		for _, s := range syms {
			vocab[s] = true
		}
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("ngram train: no usable training material for attribute %q", attr)
	}
	return &model{attr: attr, runs: runs, vocabSize: len(vocab)}, nil
}

// #endregion predictor

// #region model

// model holds the symbolized training runs; count tables are derived per
// interpretation resolution at predict time.
type model struct {
	attr      string
	runs      [][]string
	vocabSize int
}

// Predict scores the test sequence under the given interpretation. The
// phase rotates each event's position within the metrical cycle, which is
// how the interpretation context disambiguates the framing. Probabilities
// are add-one smoothed, so they are never zero.
func (m *model) Predict(test corpus.Sequence, interp taxonomy.Interpretation, predictOnly bool) ([]ensemble.AttrSeries, error) {
	if !predictOnly {
		return nil, fmt.Errorf("ngram predict: combined train+predict mode is reserved for offline evaluation")
	}
	res := interp.Resolution
	if res < 1 {
		res = 1
	}

	counts, totals := m.cycleCounts(res)
	probs := make([]float64, len(test.Events))
	for i, ev := range test.Events {
		sym := symbolOf(ev, m.attr)
		cycle := (i + interp.Phase) % res
		probs[i] = (counts[cycle][sym] + 1) / (totals[cycle] + float64(m.vocabSize+1))
	}
	return []ensemble.AttrSeries{{Attr: m.attr, Probs: probs}}, nil
}

// cycleCounts tallies symbol occurrences per position-in-cycle at the
// given resolution. Training runs are assumed phase-aligned at phase 0.
func (m *model) cycleCounts(res int) ([]map[string]float64, []float64) {
	counts := make([]map[string]float64, res)
	totals := make([]float64, res)
	for i := range counts {
		counts[i] = map[string]float64{}
	}
	for _, run := range m.runs {
		for i, sym := range run {
			cycle := i % res
			counts[cycle][sym]++
			totals[cycle]++
		}
	}
	return counts, totals
}

// #endregion model

// #region symbolize

func symbolize(seq corpus.Sequence, attr string) []string {
	var out []string
	for i, ev := range seq.Events {
		sym := symbolOf(ev, attr)
		if sym == unseenSymbol {
			log.Printf("[NGRAM] %s[%d]: missing attribute %q, skipping event", seq.ID, i, attr)
			continue
		}
		out = append(out, sym)
	}
	return out
}

func symbolOf(ev corpus.Event, attr string) string {
	if s, ok := ev.String(attr); ok {
		return s
	}
	if f, ok := ev.Float(attr); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return unseenSymbol
}

// #endregion symbolize
