package ensemble

import (
	"fmt"
	"testing"

	"github.com/tactusdev/tactus/internal/corpus"
	"github.com/tactusdev/tactus/internal/segment"
	"github.com/tactusdev/tactus/internal/taxonomy"
)

// fakePredictor records training calls and emits phase-dependent
// constant probabilities so tests can tell interpretations apart.
type fakePredictor struct {
	trained map[string]int // category label of first training event → run count
}

type fakeModel struct {
	attr string
}

func (m fakeModel) Predict(test corpus.Sequence, interp taxonomy.Interpretation, predictOnly bool) ([]AttrSeries, error) {
	if !predictOnly {
		return nil, fmt.Errorf("inference must run predict-only")
	}
	probs := make([]float64, len(test.Events))
	for i := range probs {
		probs[i] = 1.0 / float64(interp.Phase+2)
	}
	return []AttrSeries{{Attr: m.attr, Probs: probs}}, nil
}

func (p *fakePredictor) Train(train []corpus.Sequence, sourceAttrs, targetAttrs []string, rs Resampling) (Model, error) {
	label, _ := train[0].Events[0].String("metre")
	p.trained[label]++
	return fakeModel{attr: targetAttrs[0]}, nil
}

func trainingCorpus() []corpus.Sequence {
	mk := func(id string, labels ...string) corpus.Sequence {
		seq := corpus.Sequence{ID: id}
		for i, l := range labels {
			seq.Events = append(seq.Events, corpus.NewEvent(map[string]any{
				"onset": float64(i), "dur": 1.0, "pitch": 60.0, "metre": l,
			}))
		}
		return seq
	}
	return []corpus.Sequence{
		mk("a", "4/4", "4/4", "4/4"),
		mk("b", "3/4", "3/4"),
	}
}

func testSequence(n int) corpus.Sequence {
	seq := corpus.Sequence{ID: "test"}
	for i := 0; i < n; i++ {
		seq.Events = append(seq.Events, corpus.NewEvent(map[string]any{
			"onset": float64(i), "dur": 1.0, "pitch": 64.0,
		}))
	}
	return seq
}

func TestBuildTrainsOneModelPerCategory(t *testing.T) {
	p := &fakePredictor{trained: map[string]int{}}
	cats := []taxonomy.Category{
		{Name: "4/4", Resolution: 2},
		{Name: "3/4", Resolution: 1},
	}

	models, err := Build(trainingCorpus(), cats, []string{"pitch"}, []string{"pitch"}, Resampling{}, p, segment.DefaultConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if p.trained["4/4"] != 1 || p.trained["3/4"] != 1 {
		t.Fatalf("training calls %+v", p.trained)
	}
	if models[0].ID == models[1].ID {
		t.Fatal("model IDs must be distinct")
	}
}

func TestBuildFailsOnEmptyCategory(t *testing.T) {
	p := &fakePredictor{trained: map[string]int{}}
	cats := []taxonomy.Category{{Name: "9/8", Resolution: 1}}
	_, err := Build(trainingCorpus(), cats, []string{"pitch"}, nil, Resampling{}, p, segment.DefaultConfig())
	if err == nil {
		t.Fatal("expected error for category with no training material")
	}
}

func TestPredictCoversEveryInterpretation(t *testing.T) {
	p := &fakePredictor{trained: map[string]int{}}
	cats := []taxonomy.Category{
		{Name: "4/4", Resolution: 2},
		{Name: "3/4", Resolution: 1},
	}
	models, err := Build(trainingCorpus(), cats, []string{"pitch"}, nil, Resampling{}, p, segment.DefaultConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	lik, err := Predict(models, testSequence(4), "pitch")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if lik.Len() != 3 {
		t.Fatalf("got %d keys, want 3", lik.Len())
	}
	if lik.Width() != 4 {
		t.Fatalf("got width %d, want 4", lik.Width())
	}
	// Phase 0 and phase 1 of 4/4 must differ: the interpretation context
	// reached the model.
	if lik.At("4/4/2:0", 0) == lik.At("4/4/2:1", 0) {
		t.Fatal("phase context did not reach the model")
	}
}

func TestPredictRejectsWrongAttribute(t *testing.T) {
	models := []CategoryModel{{
		ID:       "m",
		Category: taxonomy.Category{Name: "4/4", Resolution: 1},
		Model:    fakeModel{attr: "duration"},
	}}
	if _, err := Predict(models, testSequence(2), "pitch"); err == nil {
		t.Fatal("expected attribute mismatch error")
	}
}
