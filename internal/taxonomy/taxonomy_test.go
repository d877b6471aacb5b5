package taxonomy

import "testing"

func TestEnumeratePhases(t *testing.T) {
	interps := Enumerate(Category{Name: "6/8", Resolution: 3})
	if len(interps) != 3 {
		t.Fatalf("got %d interpretations, want 3", len(interps))
	}
	for phase, in := range interps {
		if in.Phase != phase {
			t.Fatalf("interpretation %d has phase %d", phase, in.Phase)
		}
		if in.Category != "6/8" || in.Resolution != 3 {
			t.Fatalf("unexpected interpretation %+v", in)
		}
	}
}

func TestEnumerateClampsResolution(t *testing.T) {
	interps := Enumerate(Category{Name: "free", Resolution: 0})
	if len(interps) != 1 || interps[0].Phase != 0 {
		t.Fatalf("unexpected interpretations %+v", interps)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	in := Interpretation{Category: "3/4", Resolution: 6, Phase: 4}
	key := in.Key()
	if key != "3/4/6:4" {
		t.Fatalf("key = %q", key)
	}
	back, err := ParseKey(key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back != in {
		t.Fatalf("round trip %+v != %+v", back, in)
	}
}

func TestKeysAreDistinct(t *testing.T) {
	cats := []Category{
		{Name: "4/4", Resolution: 4},
		{Name: "3/4", Resolution: 3},
		{Name: "6/8", Resolution: 3},
	}
	seen := map[string]bool{}
	for _, c := range cats {
		for _, in := range Enumerate(c) {
			k := in.Key()
			if seen[k] {
				t.Fatalf("duplicate key %q", k)
			}
			seen[k] = true
		}
	}
	if len(seen) != TotalInterpretations(cats) {
		t.Fatalf("key count %d != total %d", len(seen), TotalInterpretations(cats))
	}
}

func TestCategoryOf(t *testing.T) {
	cat, err := CategoryOf("9/8/3:1")
	if err != nil {
		t.Fatalf("category of: %v", err)
	}
	if cat != "9/8" {
		t.Fatalf("category = %q, want 9/8", cat)
	}
	if _, err := ParseKey("garbage"); err == nil {
		t.Fatal("expected parse error")
	}
}
