package dist

import (
	"math"
	"testing"
)

func TestAppendRejectsDuplicateKey(t *testing.T) {
	d := New()
	if err := d.Append("4/4:0", 0.5); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := d.Append("4/4:0", 0.5); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestAppendRejectsWidthMismatch(t *testing.T) {
	d := New()
	if err := d.Append("a", 0.1, 0.2); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := d.Append("b", 0.3); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestNormalizeColumns(t *testing.T) {
	d := New()
	if err := d.Append("a", 2, 1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := d.Append("b", 6, 3); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := d.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !d.IsNormalized() {
		t.Fatal("expected normalized distribution")
	}
	if got := d.At("a", 0); math.Abs(got-0.25) > NormTolerance {
		t.Fatalf("a[0] = %v, want 0.25", got)
	}
	if got := d.At("b", 1); math.Abs(got-0.75) > NormTolerance {
		t.Fatalf("b[1] = %v, want 0.75", got)
	}
}

func TestNormalizeZeroColumnFails(t *testing.T) {
	d := New()
	_ = d.Append("a", 1, 0)
	_ = d.Append("b", 1, 0)
	if err := d.Normalize(); err == nil {
		t.Fatal("expected zero-mass error")
	}
}

func TestAbsentKeyReadsAsZero(t *testing.T) {
	d := New()
	_ = d.Append("a", 0.4)
	if got := d.Prob("missing"); got != 0 {
		t.Fatalf("missing key prob = %v, want 0", got)
	}
	if _, ok := d.Series("missing"); ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestSliceAndMean(t *testing.T) {
	d := New()
	_ = d.Append("a", 0.2, 0.4)
	_ = d.Append("b", 0.8, 0.6)

	s, err := d.Slice(1)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if got := s.Prob("a"); got != 0.4 {
		t.Fatalf("slice a = %v, want 0.4", got)
	}
	if s.Width() != 1 {
		t.Fatalf("slice width = %d, want 1", s.Width())
	}

	m := d.Mean()
	if got := m.Prob("b"); math.Abs(got-0.7) > NormTolerance {
		t.Fatalf("mean b = %v, want 0.7", got)
	}
}

func TestKeyOrderIsInsertionOrder(t *testing.T) {
	d := New()
	_ = d.Append("z", 1)
	_ = d.Append("a", 1)
	_ = d.Append("m", 1)
	keys := d.Keys()
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys[%d] = %s, want %s", i, keys[i], k)
		}
	}
}

func TestSeriesReturnsCopy(t *testing.T) {
	d := New()
	_ = d.Append("a", 0.5)
	row, _ := d.Series("a")
	row[0] = 99
	if got := d.Prob("a"); got != 0.5 {
		t.Fatalf("internal row mutated: %v", got)
	}
}
