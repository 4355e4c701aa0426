// Package types contains shared types used across the llta-regress harness
package types

import (
	"fmt"
)

// Verdict is the severity of a single test or of a whole suite run.
// Verdicts are totally ordered: Green < Yellow < Red.
type Verdict int

const (
	// VerdictGreen means the analyzer produced exactly the recorded baseline.
	VerdictGreen Verdict = iota
	// VerdictYellow means the analyzer produced a bound that differs from the baseline.
	VerdictYellow
	// VerdictRed means no trustworthy bound could be obtained.
	VerdictRed
)

var verdictNames = map[Verdict]string{
	VerdictGreen:  "GREEN",
	VerdictYellow: "YELLOW",
	VerdictRed:    "RED",
}

// String implements the Stringer interface for Verdict
func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// IsValid reports whether v is one of the three known verdicts.
func (v Verdict) IsValid() bool {
	_, ok := verdictNames[v]
	return ok
}

// Max returns the more severe of two verdicts.
func Max(a, b Verdict) Verdict {
	if b > a {
		return b
	}
	return a
}

// Worst folds verdicts into the most severe one. An empty input is Green.
func Worst(verdicts ...Verdict) Verdict {
	overall := VerdictGreen
	for _, v := range verdicts {
		overall = Max(overall, v)
	}
	return overall
}
