package replay

import (
	"testing"

	"github.com/tactusdev/tactus/internal/filter"
)

const workedExampleJSON = `{
  "description": "two-key worked example",
  "prior": [
    {"key": "k1", "values": [0.5]},
    {"key": "k2", "values": [0.5]}
  ],
  "likelihoods": [
    {"key": "k1", "values": [0.8, 0.1]},
    {"key": "k2", "values": [0.2, 0.9]}
  ],
  "expected": [
    {"key": "k1", "values": [0.8, 0.30769230769230776]},
    {"key": "k2", "values": [0.2, 0.6923076923076923]}
  ],
  "tolerance": 1e-6
}`

func TestReplayWorkedExample(t *testing.T) {
	f, err := ParseFixture([]byte(workedExampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Passed {
		t.Fatalf("replay failed: %+v", res.Mismatches)
	}
}

func TestReplayDetectsDrift(t *testing.T) {
	f, err := ParseFixture([]byte(workedExampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f.Expected[0].Values[1] = 0.5 // wrong on purpose

	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Passed {
		t.Fatal("replay must flag the drifted value")
	}
	if len(res.Mismatches) != 1 {
		t.Fatalf("got %d mismatches, want 1", len(res.Mismatches))
	}
	m := res.Mismatches[0]
	if m.Key != "k1" || m.Position != 1 {
		t.Fatalf("unexpected mismatch %+v", m)
	}
}

func TestReplayChecksInfoContent(t *testing.T) {
	f, err := ParseFixture([]byte(workedExampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f.ExpectedIC = []float64{1.0, 99.0} // IC(0) = -log2(0.5) = 1, IC(1) wrong

	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Passed {
		t.Fatal("replay must flag the wrong IC")
	}
	for _, m := range res.Mismatches {
		if m.Key != "information-content" || m.Position != 1 {
			t.Fatalf("unexpected mismatch %+v", m)
		}
	}
}

func TestExportRoundTrips(t *testing.T) {
	f, err := ParseFixture([]byte(workedExampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pr, err := f.PriorDist()
	if err != nil {
		t.Fatalf("prior: %v", err)
	}
	lik, err := f.LikelihoodDist()
	if err != nil {
		t.Fatalf("likelihoods: %v", err)
	}
	res, err := filter.Run(pr, lik)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	exported := Export("exported", pr, lik, res)
	replayed, err := Replay(exported)
	if err != nil {
		t.Fatalf("replay exported: %v", err)
	}
	if !replayed.Passed {
		t.Fatalf("exported fixture must replay clean: %+v", replayed.Mismatches)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseFixture([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
