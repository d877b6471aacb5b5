// Package corpus holds the event-sequence data model and the persistent
// sequence store the inference engine reads from.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// #region event

// Event is an ordered record of named attributes. Events are produced by
// corpus import and are read-only to the engine; the getters report
// absence explicitly instead of zero-filling.
type Event struct {
	attrs map[string]any
}

// NewEvent builds an event from an attribute map. The map is copied.
func NewEvent(attrs map[string]any) Event {
	m := make(map[string]any, len(attrs))
	for k, v := range attrs {
		m[k] = v
	}
	return Event{attrs: m}
}

// Float returns a numeric attribute. Integer-valued attributes are
// widened to float64.
func (e Event) Float(name string) (float64, bool) {
	v, ok := e.attrs[name]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// String returns a symbolic attribute.
func (e Event) String(name string) (string, bool) {
	v, ok := e.attrs[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Attrs returns a copy of the attribute map, for serialization.
func (e Event) Attrs() map[string]any {
	m := make(map[string]any, len(e.attrs))
	for k, v := range e.attrs {
		m[k] = v
	}
	return m
}

// #endregion event

// #region sequence

// Sequence is one composition: an ordered list of events.
type Sequence struct {
	ID     string
	Events []Event
}

// TotalDuration sums the duration attribute over the sequence, skipping
// events that lack it.
func (s Sequence) TotalDuration(durationAttr string) float64 {
	var total float64
	for _, e := range s.Events {
		if d, ok := e.Float(durationAttr); ok {
			total += d
		}
	}
	return total
}

// #endregion sequence

// #region source

// Source abstracts where sequences come from: a materialized slice or a
// lazy store-backed loader. Signature is a stable content key used to
// address memoized corpus counts.
type Source interface {
	Sequences() ([]Sequence, error)
	Signature() string
}

// SliceSource wraps an already materialized sequence list.
type SliceSource struct {
	seqs []Sequence
}

// NewSliceSource wraps seqs as a Source. The slice is not copied; callers
// must not mutate it afterwards.
func NewSliceSource(seqs []Sequence) *SliceSource {
	return &SliceSource{seqs: seqs}
}

// Sequences returns the wrapped slice.
func (s *SliceSource) Sequences() ([]Sequence, error) { return s.seqs, nil }

// Signature hashes the sequence IDs and lengths.
func (s *SliceSource) Signature() string {
	ids := make([]string, 0, len(s.seqs))
	for _, seq := range s.seqs {
		ids = append(ids, fmt.Sprintf("%s#%d", seq.ID, len(seq.Events)))
	}
	return hashIdentity(ids)
}

// StoreSource loads named datasets from a Store on demand.
type StoreSource struct {
	store      *Store
	datasetIDs []string
}

// NewStoreSource builds a lazy source over the given datasets.
func NewStoreSource(store *Store, datasetIDs ...string) *StoreSource {
	return &StoreSource{store: store, datasetIDs: datasetIDs}
}

// Sequences loads the datasets' sequences from the store.
func (s *StoreSource) Sequences() ([]Sequence, error) {
	return s.store.GetSequences(s.datasetIDs)
}

// Signature hashes the sorted dataset IDs. Re-importing a dataset under
// the same ID requires a manual cache flush.
func (s *StoreSource) Signature() string {
	ids := make([]string, len(s.datasetIDs))
	copy(ids, s.datasetIDs)
	sort.Strings(ids)
	return hashIdentity(ids)
}

// #endregion source

// #region identity-hash

func hashIdentity(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// #endregion identity-hash
