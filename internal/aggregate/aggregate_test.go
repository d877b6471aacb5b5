package aggregate

import (
	"math"
	"testing"

	"github.com/tactusdev/tactus/internal/dist"
)

func TestTimeAverage(t *testing.T) {
	d := dist.New()
	_ = d.Append("4/4/2:0", 0.2, 0.6)
	_ = d.Append("4/4/2:1", 0.8, 0.4)

	avg := TimeAverage(d)
	if got := avg.Prob("4/4/2:0"); math.Abs(got-0.4) > dist.NormTolerance {
		t.Fatalf("avg = %v, want 0.4", got)
	}
	if avg.Width() != 1 {
		t.Fatalf("width = %d, want 1", avg.Width())
	}
}

func TestPositionSlice(t *testing.T) {
	d := dist.New()
	_ = d.Append("a/1:0", 0.1, 0.9)
	_ = d.Append("b/1:0", 0.9, 0.1)

	s, err := PositionSlice(d, 1)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if got := s.Prob("a/1:0"); got != 0.9 {
		t.Fatalf("a at t=1 = %v, want 0.9", got)
	}
	if _, err := PositionSlice(d, 5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestMarginalizePhase(t *testing.T) {
	// Skewed input: 4/4 has two phases, 3/4 one; values deliberately do
	// not sum to 1 to exercise the renormalization.
	d := dist.New()
	_ = d.Append("4/4/2:0", 0.3)
	_ = d.Append("4/4/2:1", 0.5)
	_ = d.Append("3/4/1:0", 0.6)

	m, err := MarginalizePhase(d)
	if err != nil {
		t.Fatalf("marginalize: %v", err)
	}
	if !m.IsNormalized() {
		t.Fatal("marginal must sum to 1")
	}
	// Phase means: 4/4 → 0.4, 3/4 → 0.6; already normalized after scaling.
	if got := m.Prob("4/4"); math.Abs(got-0.4) > dist.NormTolerance {
		t.Fatalf("4/4 = %v, want 0.4", got)
	}
	if got := m.Prob("3/4"); math.Abs(got-0.6) > dist.NormTolerance {
		t.Fatalf("3/4 = %v, want 0.6", got)
	}
}

func TestMarginalizeRejectsTimeVarying(t *testing.T) {
	d := dist.New()
	_ = d.Append("a/1:0", 0.5, 0.5)
	if _, err := MarginalizePhase(d); err == nil {
		t.Fatal("expected width error")
	}
}

func TestMarginalizeRejectsMalformedKeys(t *testing.T) {
	d := dist.New()
	_ = d.Append("not-a-key", 1.0)
	if _, err := MarginalizePhase(d); err == nil {
		t.Fatal("expected key parse error")
	}
}
