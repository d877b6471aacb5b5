package dist

import (
	"fmt"
	"math"
)

// NormTolerance is the allowed deviation from 1.0 when checking that a
// column of a normalized distribution sums to unity.
const NormTolerance = 1e-9

// #region dist-struct

// Dist is an insertion-ordered mapping from interpretation key to a series
// of probabilities, one per time position. A width-1 Dist is a static
// distribution. Keys are unique; appending a duplicate key is an error.
type Dist struct {
	keys []string
	rows map[string][]float64
}

// #endregion dist-struct

// #region constructor

// New returns an empty distribution.
func New() *Dist {
	return &Dist{rows: make(map[string][]float64)}
}

// #endregion constructor

// #region append

// Append binds a key to its value series. The series is copied.
// Every key in a Dist must carry the same series width; the first
// append fixes the width.
func (d *Dist) Append(key string, values ...float64) error {
	if _, ok := d.rows[key]; ok {
		return fmt.Errorf("duplicate key %q", key)
	}
	if len(values) == 0 {
		return fmt.Errorf("key %q: empty series", key)
	}
	if len(d.keys) > 0 && len(values) != d.Width() {
		return fmt.Errorf("key %q: series width %d does not match %d", key, len(values), d.Width())
	}
	row := make([]float64, len(values))
	copy(row, values)
	d.keys = append(d.keys, key)
	d.rows[key] = row
	return nil
}

// #endregion append

// #region accessors

// Len returns the number of keys.
func (d *Dist) Len() int { return len(d.keys) }

// Width returns the series length shared by every key, 0 when empty.
func (d *Dist) Width() int {
	if len(d.keys) == 0 {
		return 0
	}
	return len(d.rows[d.keys[0]])
}

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Dist) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Has reports whether the key is present.
func (d *Dist) Has(key string) bool {
	_, ok := d.rows[key]
	return ok
}

// Series returns the value series for key. The slice is a copy; a missing
// key yields ok=false, never a panic.
func (d *Dist) Series(key string) ([]float64, bool) {
	row, ok := d.rows[key]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(row))
	copy(out, row)
	return out, true
}

// At returns the value for key at position t. An absent key reads as
// probability zero.
func (d *Dist) At(key string, t int) float64 {
	row, ok := d.rows[key]
	if !ok || t < 0 || t >= len(row) {
		return 0
	}
	return row[t]
}

// Prob returns the value of a static (width-1) distribution for key,
// zero when absent.
func (d *Dist) Prob(key string) float64 { return d.At(key, 0) }

// #endregion accessors

// #region column-ops

// SumAt returns the total mass across keys at position t.
func (d *Dist) SumAt(t int) float64 {
	var sum float64
	for _, k := range d.keys {
		sum += d.rows[k][t]
	}
	return sum
}

// Normalize scales every column so it sums to 1. A zero-mass column is an
// error identifying the position.
func (d *Dist) Normalize() error {
	for t := 0; t < d.Width(); t++ {
		sum := d.SumAt(t)
		if sum == 0 {
			return fmt.Errorf("normalize: zero total mass at position %d", t)
		}
		for _, k := range d.keys {
			d.rows[k][t] /= sum
		}
	}
	return nil
}

// IsNormalized reports whether every column sums to 1 within NormTolerance.
func (d *Dist) IsNormalized() bool {
	for t := 0; t < d.Width(); t++ {
		if math.Abs(d.SumAt(t)-1) > NormTolerance {
			return false
		}
	}
	return len(d.keys) > 0
}

// #endregion column-ops

// #region derived

// Slice returns the static distribution at position t, preserving key
// order.
func (d *Dist) Slice(t int) (*Dist, error) {
	if t < 0 || t >= d.Width() {
		return nil, fmt.Errorf("slice: position %d out of range [0,%d)", t, d.Width())
	}
	out := New()
	for _, k := range d.keys {
		if err := out.Append(k, d.rows[k][t]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Mean returns the static distribution holding each key's arithmetic mean
// over time.
func (d *Dist) Mean() *Dist {
	out := New()
	for _, k := range d.keys {
		row := d.rows[k]
		var sum float64
		for _, v := range row {
			sum += v
		}
		// Append on a fresh Dist with unique keys cannot fail.
		_ = out.Append(k, sum/float64(len(row)))
	}
	return out
}

// Clone returns a deep copy.
func (d *Dist) Clone() *Dist {
	out := New()
	for _, k := range d.keys {
		_ = out.Append(k, d.rows[k]...)
	}
	return out
}

// #endregion derived
