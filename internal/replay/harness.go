package replay

import (
	"fmt"
	"math"

	"github.com/tactusdev/tactus/internal/dist"
	"github.com/tactusdev/tactus/internal/filter"
)

// #region result

// Mismatch reports one expected value the replay failed to reproduce.
type Mismatch struct {
	Key      string
	Position int
	Got      float64
	Want     float64
}

// Result captures the outcome of replaying one fixture.
type Result struct {
	Description string
	Passed      bool
	Mismatches  []Mismatch
}

// #endregion result

// #region replay

// Replay runs the fixture through the filter and compares every expected
// posterior row and information content within the fixture tolerance.
func Replay(f *Fixture) (Result, error) {
	pr, err := f.PriorDist()
	if err != nil {
		return Result{}, err
	}
	lik, err := f.LikelihoodDist()
	if err != nil {
		return Result{}, err
	}

	res, err := filter.Run(pr, lik)
	if err != nil {
		return Result{}, fmt.Errorf("replay filter: %w", err)
	}

	out := Result{Description: f.Description, Passed: true}
	for _, exp := range f.Expected {
		got, ok := res.Posterior.Series(exp.Key)
		if !ok {
			out.Passed = false
			out.Mismatches = append(out.Mismatches, Mismatch{Key: exp.Key, Position: -1})
			continue
		}
		for t, want := range exp.Values {
			if t >= len(got) || math.Abs(got[t]-want) > f.Tolerance {
				v := math.NaN()
				if t < len(got) {
					v = got[t]
				}
				out.Passed = false
				out.Mismatches = append(out.Mismatches, Mismatch{Key: exp.Key, Position: t, Got: v, Want: want})
			}
		}
	}
	for t, want := range f.ExpectedIC {
		if t >= len(res.InfoContent) || math.Abs(res.InfoContent[t]-want) > f.Tolerance {
			v := math.NaN()
			if t < len(res.InfoContent) {
				v = res.InfoContent[t]
			}
			out.Passed = false
			out.Mismatches = append(out.Mismatches, Mismatch{Key: "information-content", Position: t, Got: v, Want: want})
		}
	}
	return out, nil
}

// #endregion replay

// #region export

// Export captures a filter run as a fixture, so today's behavior becomes
// tomorrow's regression test.
func Export(description string, prior, likelihoods *dist.Dist, res filter.Result) *Fixture {
	out := &Fixture{
		Description: description,
		Prior:       distToRows(prior),
		Likelihoods: distToRows(likelihoods),
		Tolerance:   dist.NormTolerance,
		ExpectedIC:  res.InfoContent,
	}
	for _, key := range res.Posterior.Keys() {
		series, _ := res.Posterior.Series(key)
		out.Expected = append(out.Expected, FixtureExpected{Key: key, Values: series})
	}
	return out
}

func distToRows(d *dist.Dist) []FixtureRow {
	rows := make([]FixtureRow, 0, d.Len())
	for _, key := range d.Keys() {
		series, _ := d.Series(key)
		rows = append(rows, FixtureRow{Key: key, Values: series})
	}
	return rows
}

// #endregion export
