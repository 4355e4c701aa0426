package runner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llta-project/llta-regress/types"
)

type processCall struct {
	binary  string
	args    []string
	timeout time.Duration
}

// fakeProcess returns a canned outcome and records how it was called.
type fakeProcess struct {
	outcome *RunOutcome
	calls   []processCall
}

func (f *fakeProcess) Run(_ context.Context, binary string, args []string, timeout time.Duration) *RunOutcome {
	f.calls = append(f.calls, processCall{binary: binary, args: args, timeout: timeout})
	return f.outcome
}

func newTestEvaluator(t *testing.T, process ProcessRunner) (Evaluator, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := NewEvaluator(EvaluatorConfig{
		AnalyzerPath: "/opt/llta/bin/llta",
		Process:      process,
		Log:          discardLogger(),
		Out:          &out,
	})
	require.NoError(t, err)
	return e, &out
}

func TestNewEvaluator_RequiresAnalyzer(t *testing.T) {
	_, err := NewEvaluator(EvaluatorConfig{Log: discardLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyzer path cannot be empty")
}

func TestEvaluator_Evaluate(t *testing.T) {
	fixture := writeFixture(t, t.TempDir(), "msp430/cnt/msp.ll")

	single := types.TestCase{
		Name:     "cnt",
		Fixture:  fixture,
		Baseline: 6347,
		Timeout:  time.Minute,
		Mode:     types.TestModeSingle,
	}
	cover := types.TestCase{
		Name:     "cover",
		Fixture:  fixture,
		Baseline: 3483,
		Args:     []string{"-start-function=main"},
		Timeout:  time.Minute,
		Mode:     types.TestModeSingle,
	}
	multi := types.TestCase{
		Name:          "cnt-all-solvers",
		Fixture:       fixture,
		Baseline:      6347,
		Args:          []string{ILPSolverAllFlag},
		SuccessMarker: DefaultSuccessMarker,
		Timeout:       5 * time.Minute,
		Mode:          types.TestModeMultiSolver,
	}
	shortMarker := multi.Clone()
	shortMarker.SuccessMarker = "[SUCCESS]"

	tests := []struct {
		name            string
		tc              types.TestCase
		outcome         *RunOutcome
		expectedVerdict types.Verdict
		expectedFailure types.FailureKind
		expectedBound   uint64
		expectedHas     bool
		expectedSource  string
		errContains     string
		outContains     []string
		check           func(t *testing.T, result *types.TestResult)
	}{
		{
			name:            "legacy bound equals baseline",
			tc:              single,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: legacyOutput, Duration: time.Second},
			expectedVerdict: types.VerdictGreen,
			expectedFailure: types.FailureNone,
			expectedBound:   6347,
			expectedHas:     true,
			expectedSource:  "legacy",
			outContains:     []string{"Running test: cnt", "PASS: cnt (matches expected 6347) -> GREEN"},
		},
		{
			name:            "legacy bound differs from baseline",
			tc:              cover,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: "WCET (worst-case execution time): 3400 cycles\n"},
			expectedVerdict: types.VerdictYellow,
			expectedFailure: types.FailureValueMismatch,
			expectedBound:   3400,
			expectedHas:     true,
			expectedSource:  "legacy",
			errContains:     "expected 3483 cycles, got 3400",
			outContains:     []string{"WARNING: cover (expected 3483, got 3400, -83) -> YELLOW"},
		},
		{
			name:            "unified line accepted for single-solver case",
			tc:              single,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: unifiedOutput},
			expectedVerdict: types.VerdictGreen,
			expectedFailure: types.FailureNone,
			expectedBound:   6347,
			expectedHas:     true,
			expectedSource:  "unified",
		},
		{
			name:            "no bound in output",
			tc:              single,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: "Failed to compute WCET.\n"},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureParse,
			errContains:     "WCET bound not found",
			outContains:     []string{"Failed to compute WCET."},
			check: func(t *testing.T, result *types.TestResult) {
				assert.Equal(t, "Failed to compute WCET.\n", result.Stdout)
			},
		},
		{
			name: "non-zero exit surfaces stderr",
			tc:   single,
			outcome: &RunOutcome{
				Status:   OutcomeNonZeroExit,
				ExitCode: 3,
				Stdout:   legacyOutput,
				Stderr:   "error: could not parse IR\n",
				Err:      errors.New("analyzer exited with code 3"),
			},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureExecution,
			errContains:     "exited with code 3",
			outContains:     []string{"Stderr: error: could not parse IR"},
			check: func(t *testing.T, result *types.TestResult) {
				assert.Equal(t, 3, result.ExitCode)
				assert.Equal(t, "error: could not parse IR\n", result.Stderr)
			},
		},
		{
			name:            "timeout",
			tc:              single,
			outcome:         &RunOutcome{Status: OutcomeTimeout, ExitCode: -1, Err: errors.New("analyzer timed out after 1m0s")},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureExecution,
			errContains:     "timed out",
		},
		{
			name:            "launch error",
			tc:              single,
			outcome:         &RunOutcome{Status: OutcomeLaunchError, ExitCode: -1, Err: errors.New("failed to launch analyzer: permission denied")},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureExecution,
			errContains:     "permission denied",
		},
		{
			name:            "multi-solver agreement",
			tc:              multi,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: unifiedOutput},
			expectedVerdict: types.VerdictGreen,
			expectedFailure: types.FailureNone,
			expectedBound:   6347,
			expectedHas:     true,
			expectedSource:  "unified",
			check: func(t *testing.T, result *types.TestResult) {
				require.Len(t, result.Solvers, 3)
				assert.Equal(t, "Legacy/Gurobi=n/a Legacy/HiGHS=6347 Abstract/HiGHS=6347", result.SolverSummary())
			},
		},
		{
			name:            "multi-solver agreement on a different value",
			tc:              multi,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: "[SUCCESS] All solvers agree on WCET: 6400 cycles\n"},
			expectedVerdict: types.VerdictYellow,
			expectedFailure: types.FailureValueMismatch,
			expectedBound:   6400,
			expectedHas:     true,
			expectedSource:  "unified",
			errContains:     "expected 6347 cycles, got 6400",
			outContains:     []string{"WARNING: cnt-all-solvers (expected 6347, got 6400, +53) -> YELLOW"},
		},
		{
			name:            "multi-solver with a short custom marker",
			tc:              shortMarker,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: "[SUCCESS] All solvers agree on WCET: 6347 cycles\n"},
			expectedVerdict: types.VerdictGreen,
			expectedFailure: types.FailureNone,
			expectedBound:   6347,
			expectedHas:     true,
			expectedSource:  "unified",
		},
		{
			name:            "multi-solver without marker ignores legacy bound",
			tc:              multi,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: legacyOutput},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureParse,
			errContains:     "success marker not found",
		},
		{
			name:            "multi-solver disagreement",
			tc:              multi,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: disagreementOutput},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureParse,
			errContains:     "solvers disagree",
			check: func(t *testing.T, result *types.TestResult) {
				assert.Len(t, result.Solvers, 2)
				assert.ErrorIs(t, result.Error, ErrMarkerNotFound)
			},
		},
		{
			name:            "multi-solver marker without number",
			tc:              multi,
			outcome:         &RunOutcome{Status: OutcomeSuccess, Stdout: "[SUCCESS] All solvers agree on WCET: unknown\n"},
			expectedVerdict: types.VerdictRed,
			expectedFailure: types.FailureParse,
			errContains:     "WCET bound not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			process := &fakeProcess{outcome: tt.outcome}
			e, out := newTestEvaluator(t, process)

			result := e.Evaluate(context.Background(), tt.tc)
			require.NotNil(t, result)

			assert.Equal(t, tt.tc.Name, result.Name())
			assert.Equal(t, tt.expectedVerdict, result.Verdict)
			assert.Equal(t, tt.expectedFailure, result.Failure)
			assert.Equal(t, tt.expectedHas, result.HasBound)
			if tt.expectedHas {
				assert.Equal(t, tt.expectedBound, result.Bound)
			}
			assert.Equal(t, tt.expectedSource, result.Source)
			if tt.errContains != "" {
				require.Error(t, result.Error)
				assert.Contains(t, result.Error.Error(), tt.errContains)
			} else {
				assert.NoError(t, result.Error)
			}
			for _, s := range tt.outContains {
				assert.Contains(t, out.String(), s)
			}

			require.Len(t, process.calls, 1)
			assert.Equal(t, "/opt/llta/bin/llta", process.calls[0].binary)
			assert.Equal(t, tt.tc.CommandArgs(), process.calls[0].args)
			assert.Equal(t, tt.tc.Timeout, process.calls[0].timeout)

			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestEvaluator_MissingFixture(t *testing.T) {
	process := &fakeProcess{outcome: &RunOutcome{Status: OutcomeSuccess, Stdout: legacyOutput}}
	e, out := newTestEvaluator(t, process)

	tc := types.TestCase{
		Name:     "cnt",
		Fixture:  filepath.Join(t.TempDir(), "missing.ll"),
		Baseline: 6347,
	}
	result := e.Evaluate(context.Background(), tc)

	assert.Equal(t, types.VerdictRed, result.Verdict)
	assert.Equal(t, types.FailureSetup, result.Failure)
	assert.False(t, result.HasBound)
	assert.Empty(t, process.calls, "no process should be launched without a fixture")
	assert.Contains(t, out.String(), "Error: fixture not found at")
}

func TestEvaluator_CommandLine(t *testing.T) {
	fixture := writeFixture(t, t.TempDir(), "cover.ll")
	process := &fakeProcess{outcome: &RunOutcome{Status: OutcomeSuccess, Stdout: legacyOutput}}
	e, out := newTestEvaluator(t, process)

	e.Evaluate(context.Background(), types.TestCase{
		Name:     "cover",
		Fixture:  fixture,
		Baseline: 3483,
		Args:     []string{"-start-function=main"},
	})

	assert.Contains(t, out.String(), "Command: /opt/llta/bin/llta -start-function=main "+fixture)
	assert.Equal(t, []string{"-start-function=main", fixture}, process.calls[0].args)
}

func TestEvaluator_StdoutTailIsBounded(t *testing.T) {
	fixture := writeFixture(t, t.TempDir(), "cnt.ll")
	long := string(bytes.Repeat([]byte("x"), 2*StdoutTailBytes)) + "END"
	process := &fakeProcess{outcome: &RunOutcome{Status: OutcomeSuccess, Stdout: long}}
	e, _ := newTestEvaluator(t, process)

	result := e.Evaluate(context.Background(), types.TestCase{Name: "cnt", Fixture: fixture, Baseline: 1})

	assert.Equal(t, types.FailureParse, result.Failure)
	assert.Len(t, result.Stdout, StdoutTailBytes)
	assert.True(t, bytes.HasSuffix([]byte(result.Stdout), []byte("END")))
}

func TestEvaluator_WithRealProcess(t *testing.T) {
	dir := t.TempDir()
	analyzer := writeAnalyzer(t, dir, `echo "WCET (worst-case execution time): 3483 cycles"`)
	fixture := writeFixture(t, dir, "msp430/cover/msp.ll")

	e, err := NewEvaluator(EvaluatorConfig{AnalyzerPath: analyzer, Log: discardLogger()})
	require.NoError(t, err)

	result := e.Evaluate(context.Background(), types.TestCase{
		Name:     "cover",
		Fixture:  fixture,
		Baseline: 3483,
		Args:     []string{"-start-function=main"},
		Timeout:  10 * time.Second,
	})

	assert.Equal(t, types.VerdictGreen, result.Verdict)
	assert.Equal(t, 0, result.ExitCode)
	assert.Positive(t, result.Duration)
}
