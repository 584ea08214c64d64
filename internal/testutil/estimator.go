package testutil

import "github.com/randool/chatmesh/core"

// LengthEstimator is a deterministic token estimator for tests: every turn
// costs its content length in bytes plus one. No encoding data is needed, so
// tests stay hermetic.
type LengthEstimator struct{}

func (LengthEstimator) Estimate(turns []core.Turn) (int, error) {
	total := 0
	for _, t := range turns {
		total += len(t.Content) + 1
	}
	return total, nil
}

func (LengthEstimator) Model() string { return "length" }
