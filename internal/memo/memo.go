// Package memo provides content-addressed memoization of expensive corpus
// computations. Entries are pure: recomputing under the same key must
// reproduce the same value, so a cached value is returned unchanged and a
// corrupt one is simply recomputed and overwritten.
package memo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// #region provider

// Provider is the persistence boundary for memoized values. Values are
// opaque JSON blobs; shape validation is the caller's concern.
type Provider interface {
	Exists(key string) (bool, error)
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
}

// #endregion provider

// #region key

// Key derives a stable cache key from the given identity parts
// (typically corpus signature, resolution, counting mode).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// #endregion key

// #region none

// None is a Provider that caches nothing; every lookup misses.
type None struct{}

// Exists always reports a miss.
func (None) Exists(string) (bool, error) { return false, nil }

// Read always fails; callers check Exists first.
func (None) Read(key string) ([]byte, error) {
	return nil, fmt.Errorf("memo: no entry for %s", key)
}

// Write discards the entry.
func (None) Write(string, []byte) error { return nil }

// #endregion none
