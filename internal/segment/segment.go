// Package segment splits a corpus into per-category training material and
// counts per-category occurrence mass.
package segment

import (
	"log"

	"github.com/tactusdev/tactus/internal/corpus"
)

// #region texture

// Texture selects how category mass is counted over a sequence.
type Texture string

const (
	// TextureGrid counts every event, weighted by its duration.
	TextureGrid Texture = "grid"
	// TextureMelody counts only the final event of each sequence.
	TextureMelody Texture = "melody"
	// TextureHarmony counts like TextureMelody over chorded sequences.
	TextureHarmony Texture = "harmony"
)

// #endregion texture

// #region config

// Config names the event attributes the segmenter reads and how mass is
// accumulated.
type Config struct {
	CategoryAttr string
	DurationAttr string
	Texture      Texture
	// PerComposition adds 1 per sequence in final-event counting instead
	// of a duration ratio.
	PerComposition bool
	// Resolution participates in the memo key so counts cached for one
	// phase resolution are not served for another.
	Resolution int
}

// DefaultConfig returns the standard attribute names.
func DefaultConfig() Config {
	return Config{
		CategoryAttr:   "metre",
		DurationAttr:   "dur",
		Texture:        TextureMelody,
		PerComposition: true,
		Resolution:     1,
	}
}

// #endregion config

// #region segment

// Segment returns the contiguous runs of events labelled with category,
// one output sequence per run, in original order. A run breaks on a
// different label, a missing label, or the end of the sequence. Events
// without the category attribute are skipped with a warning.
func Segment(seqs []corpus.Sequence, category string, cfg Config) []corpus.Sequence {
	var out []corpus.Sequence
	for _, seq := range seqs {
		var run []corpus.Event
		flush := func() {
			if len(run) > 0 {
				out = append(out, corpus.Sequence{ID: seq.ID, Events: run})
				run = nil
			}
		}
		for i, ev := range seq.Events {
			label, ok := ev.String(cfg.CategoryAttr)
			if !ok {
				log.Printf("[SEG] %s[%d]: missing attribute %q, skipping event", seq.ID, i, cfg.CategoryAttr)
				flush()
				continue
			}
			if label != category {
				flush()
				continue
			}
			run = append(run, ev)
		}
		flush()
	}
	return out
}

// #endregion segment

// #region count

// Count accumulates per-category mass over the corpus. In grid texture
// every event with valid category and duration attributes contributes its
// duration; in melody/harmony texture only the last event of each
// sequence contributes, either 1 per composition or the last event's
// duration as a fraction of the sequence's total duration. Absent keys
// mean zero mass.
func Count(seqs []corpus.Sequence, cfg Config) map[string]float64 {
	mass := map[string]float64{}
	for _, seq := range seqs {
		switch cfg.Texture {
		case TextureGrid:
			countGrid(seq, cfg, mass)
		default:
			countFinalEvent(seq, cfg, mass)
		}
	}
	return mass
}

func countGrid(seq corpus.Sequence, cfg Config, mass map[string]float64) {
	for i, ev := range seq.Events {
		label, ok := ev.String(cfg.CategoryAttr)
		if !ok {
			log.Printf("[SEG] %s[%d]: missing attribute %q, skipping event", seq.ID, i, cfg.CategoryAttr)
			continue
		}
		dur, ok := ev.Float(cfg.DurationAttr)
		if !ok {
			log.Printf("[SEG] %s[%d]: missing attribute %q, skipping event", seq.ID, i, cfg.DurationAttr)
			continue
		}
		mass[label] += dur
	}
}

func countFinalEvent(seq corpus.Sequence, cfg Config, mass map[string]float64) {
	if len(seq.Events) == 0 {
		return
	}
	last := seq.Events[len(seq.Events)-1]
	label, ok := last.String(cfg.CategoryAttr)
	if !ok {
		log.Printf("[SEG] %s: final event missing attribute %q, skipping sequence", seq.ID, cfg.CategoryAttr)
		return
	}
	mass[label] += finalEventMass(seq, last, cfg)
}

// finalEventMass is 1 in per-composition counting, otherwise the final
// event's share of the sequence's total duration.
func finalEventMass(seq corpus.Sequence, last corpus.Event, cfg Config) float64 {
	if cfg.PerComposition {
		return 1
	}
	dur, ok := last.Float(cfg.DurationAttr)
	if !ok {
		log.Printf("[SEG] %s: final event missing attribute %q, counting as whole composition", seq.ID, cfg.DurationAttr)
		return 1
	}
	total := seq.TotalDuration(cfg.DurationAttr)
	if total == 0 {
		return 1
	}
	return dur / total
}

// #endregion count
