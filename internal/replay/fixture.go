// Package replay provides JSON regression fixtures for the Bayesian
// filter: a recorded prior and likelihood table together with the
// posteriors and information contents a correct run must reproduce.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tactusdev/tactus/internal/dist"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Prior       []FixtureRow      `json:"prior"`
	Likelihoods []FixtureRow      `json:"likelihoods"`
	Expected    []FixtureExpected `json:"expected"`
	ExpectedIC  []float64         `json:"expected_ic,omitempty"`
	Tolerance   float64           `json:"tolerance,omitempty"`
}

// FixtureRow binds one interpretation key to its value series.
type FixtureRow struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// FixtureExpected is one expected posterior row.
type FixtureExpected struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture JSON.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.Tolerance == 0 {
		f.Tolerance = dist.NormTolerance
	}
	return &f, nil
}

// #endregion fixture-loader

// #region conversion

// PriorDist converts the fixture prior rows to a distribution.
func (f *Fixture) PriorDist() (*dist.Dist, error) {
	return rowsToDist(f.Prior)
}

// LikelihoodDist converts the fixture likelihood rows to a distribution.
func (f *Fixture) LikelihoodDist() (*dist.Dist, error) {
	return rowsToDist(f.Likelihoods)
}

func rowsToDist(rows []FixtureRow) (*dist.Dist, error) {
	d := dist.New()
	for _, r := range rows {
		if err := d.Append(r.Key, r.Values...); err != nil {
			return nil, fmt.Errorf("fixture row: %w", err)
		}
	}
	return d, nil
}

// #endregion conversion
