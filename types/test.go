package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TestMode selects how the analyzer is asked to solve a fixture
type TestMode string

// TestMode enum values
const (
	// TestModeSingle runs the analyzer with its default ILP solver and expects the legacy report line.
	TestModeSingle TestMode = "single"
	// TestModeMultiSolver cross-validates every solver backend and expects the agreement marker.
	TestModeMultiSolver TestMode = "multi-solver"
)

// String implements the Stringer interface for TestMode
func (m TestMode) String() string {
	return string(m)
}

// IsValid reports whether m is a known mode. The empty mode is treated as single.
func (m TestMode) IsValid() bool {
	return m == "" || m == TestModeSingle || m == TestModeMultiSolver
}

// FailureKind classifies why a test did not come out Green.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureSetup means the fixture (or analyzer) was missing and nothing could be compared.
	FailureSetup
	// FailureExecution means the analyzer crashed, timed out or could not be launched.
	FailureExecution
	// FailureParse means the analyzer exited cleanly but its output could not be interpreted.
	FailureParse
	// FailureValueMismatch means a bound was recovered but differs from the baseline.
	FailureValueMismatch
)

// String implements the Stringer interface for FailureKind
func (f FailureKind) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureSetup:
		return "setup"
	case FailureExecution:
		return "execution"
	case FailureParse:
		return "parse"
	case FailureValueMismatch:
		return "value-mismatch"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(f))
	}
}

// Verdict maps the failure kind onto the severity model. Only a value
// mismatch is a warning; every other failure is Red.
func (f FailureKind) Verdict() Verdict {
	switch f {
	case FailureNone:
		return VerdictGreen
	case FailureValueMismatch:
		return VerdictYellow
	default:
		return VerdictRed
	}
}

// TestCase is one fully resolved regression check. It is built by the
// registry and not modified afterwards.
type TestCase struct {
	Name     string
	Fixture  string   // Absolute path of the analyzer input
	Baseline uint64   // Expected WCET in cycles
	Args     []string // Extra analyzer flags, placed before the fixture path

	// SuccessMarker, when set, must appear in stdout before any bound is trusted.
	SuccessMarker string
	Timeout       time.Duration
	Mode          TestMode
}

// IsMultiSolver reports whether the case is gated on a success marker.
func (tc TestCase) IsMultiSolver() bool {
	return tc.SuccessMarker != ""
}

// CommandArgs returns the analyzer argument vector: extra flags followed by the fixture path.
func (tc TestCase) CommandArgs() []string {
	args := make([]string, 0, len(tc.Args)+1)
	args = append(args, tc.Args...)
	return append(args, tc.Fixture)
}

// Clone returns a deep copy so callers can't mutate the registry's cases.
func (tc TestCase) Clone() TestCase {
	tc.Args = slices.Clone(tc.Args)
	return tc
}

// SolverResult is one row of the analyzer's unified solver comparison table.
type SolverResult struct {
	Type      string // "Legacy" or "Abstract"
	Solver    string // "Gurobi", "HiGHS", ...
	Available bool
	Success   bool
	WCET      uint64
	SolveTime time.Duration
}

// Label returns a compact "Type/Solver" label.
func (s SolverResult) Label() string {
	return s.Type + "/" + s.Solver
}

// TestResult captures the outcome of evaluating a single TestCase
type TestResult struct {
	Case     TestCase
	Verdict  Verdict
	Failure  FailureKind
	Bound    uint64 // Only meaningful when HasBound is true
	HasBound bool
	Source   string // Report format the bound was read from, e.g. "legacy" or "unified"
	ExitCode int
	Duration time.Duration
	Error    error  // Diagnostic for anything that isn't Green
	Stderr   string // Captured stderr for execution failures
	Stdout   string // Tail of stdout, attached when the output could not be parsed
	Solvers  []SolverResult
}

// NewTestResult builds a result whose verdict is derived from the failure kind.
func NewTestResult(tc TestCase, failure FailureKind, err error) *TestResult {
	return &TestResult{
		Case:    tc,
		Verdict: failure.Verdict(),
		Failure: failure,
		Error:   err,
	}
}

// Name returns the test case name.
func (tr *TestResult) Name() string {
	return tr.Case.Name
}

// SetBound records the parsed bound and classifies the result against the baseline.
func (tr *TestResult) SetBound(bound uint64) {
	tr.Bound = bound
	tr.HasBound = true
	if bound == tr.Case.Baseline {
		tr.Failure = FailureNone
		tr.Error = nil
	} else {
		tr.Failure = FailureValueMismatch
		tr.Error = fmt.Errorf("expected %d cycles, got %d", tr.Case.Baseline, bound)
	}
	tr.Verdict = tr.Failure.Verdict()
}

// Delta returns bound minus baseline. It is zero when no bound was parsed.
func (tr *TestResult) Delta() int64 {
	if !tr.HasBound {
		return 0
	}
	return int64(tr.Bound) - int64(tr.Case.Baseline)
}

// SolverSummary renders the solver table rows as "Legacy/HiGHS=6347 ...".
func (tr *TestResult) SolverSummary() string {
	parts := make([]string, 0, len(tr.Solvers))
	for _, s := range tr.Solvers {
		switch {
		case !s.Available:
			parts = append(parts, s.Label()+"=n/a")
		case !s.Success:
			parts = append(parts, s.Label()+"=failed")
		default:
			parts = append(parts, fmt.Sprintf("%s=%d", s.Label(), s.WCET))
		}
	}
	return strings.Join(parts, " ")
}
