package registry

import (
	"github.com/llta-project/llta-regress/types"
)

// DefaultFixturesDir is used when neither the caller nor the suite file names one.
const DefaultFixturesDir = "tests"

// Built-in baselines for the msp430 fixtures.
const (
	CntBaseline   uint64 = 6347
	CoverBaseline uint64 = 3483
)

// DefaultSuite returns the built-in regression suite. Each call returns a fresh value.
func DefaultSuite() *types.SuiteConfig {
	return &types.SuiteConfig{
		Tests: []types.TestConfig{
			{
				Name:     "cnt",
				Fixture:  "msp430/cnt/msp.ll",
				Baseline: CntBaseline,
			},
			{
				// cover has several candidate roots, so the entry point must be named.
				Name:          "cover",
				Fixture:       "msp430/cover/msp.ll",
				Baseline:      CoverBaseline,
				StartFunction: "main",
			},
			{
				Name:     "cnt-all-solvers",
				Fixture:  "msp430/cnt/msp.ll",
				Baseline: CntBaseline,
				Mode:     types.TestModeMultiSolver,
			},
		},
	}
}
