// Package taxonomy enumerates the fine-grained hidden states of the
// inference: each coarse metre category expands into one interpretation
// per phase at the category's resolution.
package taxonomy

import (
	"fmt"
	"strconv"
	"strings"
)

// #region category

// Category is a coarse metrical family with a phase resolution.
type Category struct {
	Name       string
	Resolution int
}

// #endregion category

// #region interpretation

// Interpretation is one fully specified hidden state: a category plus a
// phase offset in [0, Resolution).
type Interpretation struct {
	Category   string
	Resolution int
	Phase      int
}

// Key returns the canonical string key "category/resolution:phase".
// Keys are unique across distinct interpretations; the rest of the engine
// relies on that.
func (i Interpretation) Key() string {
	return fmt.Sprintf("%s/%d:%d", i.Category, i.Resolution, i.Phase)
}

// #endregion interpretation

// #region enumerate

// Enumerate lists every interpretation of a category, phases in ascending
// order. A non-positive resolution yields a single phase-0 interpretation.
func Enumerate(c Category) []Interpretation {
	res := c.Resolution
	if res < 1 {
		res = 1
	}
	out := make([]Interpretation, 0, res)
	for phase := 0; phase < res; phase++ {
		out = append(out, Interpretation{Category: c.Name, Resolution: res, Phase: phase})
	}
	return out
}

// TotalInterpretations returns the size of the full state space across
// categories.
func TotalInterpretations(cats []Category) int {
	total := 0
	for _, c := range cats {
		total += len(Enumerate(c))
	}
	return total
}

// #endregion enumerate

// #region parse

// ParseKey inverts Interpretation.Key.
func ParseKey(key string) (Interpretation, error) {
	slash := strings.LastIndex(key, "/")
	colon := strings.LastIndex(key, ":")
	if slash < 0 || colon < slash {
		return Interpretation{}, fmt.Errorf("malformed interpretation key %q", key)
	}
	res, err := strconv.Atoi(key[slash+1 : colon])
	if err != nil {
		return Interpretation{}, fmt.Errorf("malformed resolution in key %q: %w", key, err)
	}
	phase, err := strconv.Atoi(key[colon+1:])
	if err != nil {
		return Interpretation{}, fmt.Errorf("malformed phase in key %q: %w", key, err)
	}
	return Interpretation{Category: key[:slash], Resolution: res, Phase: phase}, nil
}

// CategoryOf returns the parent category name of an interpretation key.
func CategoryOf(key string) (string, error) {
	interp, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return interp.Category, nil
}

// #endregion parse
