package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/llta-project/llta-regress/types"
)

var _ Evaluator = (*evaluator)(nil)

// Evaluator classifies a single test case.
type Evaluator interface {
	Evaluate(ctx context.Context, tc types.TestCase) *types.TestResult
}

// EvaluatorConfig holds configuration for creating a new evaluator
type EvaluatorConfig struct {
	AnalyzerPath string
	Process      ProcessRunner // Defaults to NewProcessRunner
	Parser       OutputParser  // Defaults to NewOutputParser
	Log          log.Logger
	Out          io.Writer // Progress and diagnostics; defaults to io.Discard
}

type evaluator struct {
	analyzer string
	process  ProcessRunner
	parser   OutputParser
	log      log.Logger
	out      io.Writer
}

// NewEvaluator creates a new test case evaluator
func NewEvaluator(cfg EvaluatorConfig) (Evaluator, error) {
	if cfg.AnalyzerPath == "" {
		return nil, errors.New("analyzer path cannot be empty")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Process == nil {
		cfg.Process = NewProcessRunner(cfg.Log, nil)
	}
	if cfg.Parser == nil {
		cfg.Parser = NewOutputParser()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &evaluator{
		analyzer: cfg.AnalyzerPath,
		process:  cfg.Process,
		parser:   cfg.Parser,
		log:      cfg.Log,
		out:      cfg.Out,
	}, nil
}

// Evaluate implements Evaluator. It never returns nil.
func (e *evaluator) Evaluate(ctx context.Context, tc types.TestCase) *types.TestResult {
	args := tc.CommandArgs()
	e.printf("Running test: %s\n", tc.Name)
	e.printf("Command: %s\n", strings.Join(append([]string{e.analyzer}, args...), " "))
	e.log.Info("Running test", "test", tc.Name, "fixture", tc.Fixture, "timeout", tc.Timeout)

	if _, err := os.Stat(tc.Fixture); err != nil {
		result := types.NewTestResult(tc, types.FailureSetup, fmt.Errorf("fixture not available: %w", err))
		e.printf("Error: fixture not found at %s\n", tc.Fixture)
		e.log.Error("Fixture missing", "test", tc.Name, "fixture", tc.Fixture, "err", err)
		return result
	}

	outcome := e.process.Run(ctx, e.analyzer, args, tc.Timeout)
	result := e.classify(tc, outcome)
	result.ExitCode = outcome.ExitCode
	result.Duration = outcome.Duration

	e.log.Info("Test finished", "test", tc.Name, "verdict", result.Verdict, "failure", result.Failure,
		"bound", result.Bound, "format", result.Source, "baseline", tc.Baseline, "duration", result.Duration)
	return result
}

func (e *evaluator) classify(tc types.TestCase, outcome *RunOutcome) *types.TestResult {
	if outcome.Status != OutcomeSuccess {
		result := types.NewTestResult(tc, types.FailureExecution, outcome.Err)
		result.Stderr = outcome.Stderr
		e.printf("Error: %v\n", outcome.Err)
		if outcome.Stderr != "" {
			e.printf("Stderr: %s\n", outcome.Stderr)
		}
		e.log.Error("Analyzer run failed", "test", tc.Name, "status", outcome.Status,
			"exitCode", outcome.ExitCode, "err", outcome.Err)
		return result
	}

	if tc.IsMultiSolver() {
		return e.classifyMultiSolver(tc, outcome.Stdout)
	}

	bound, found := e.parser.ParseBound(outcome.Stdout)
	if !found {
		return e.unparseable(tc, outcome.Stdout, ErrBoundNotFound)
	}
	result := types.NewTestResult(tc, types.FailureNone, nil)
	result.SetBound(bound.Cycles)
	result.Source = bound.Format.String()
	e.report(result)
	return result
}

func (e *evaluator) classifyMultiSolver(tc types.TestCase, stdout string) *types.TestResult {
	solvers := e.parser.SolverTable(stdout)
	bound, err := e.parser.BoundAfterMarker(stdout, tc.SuccessMarker)
	if err != nil {
		if errors.Is(err, ErrMarkerNotFound) && e.parser.SolversDisagree(stdout) {
			err = fmt.Errorf("solvers disagree: %w", err)
		}
		result := e.unparseable(tc, stdout, err)
		result.Solvers = solvers
		return result
	}
	result := types.NewTestResult(tc, types.FailureNone, nil)
	result.Solvers = solvers
	result.SetBound(bound.Cycles)
	result.Source = bound.Format.String()
	e.report(result)
	return result
}

func (e *evaluator) unparseable(tc types.TestCase, stdout string, err error) *types.TestResult {
	result := types.NewTestResult(tc, types.FailureParse, err)
	result.Stdout = tail(stdout, StdoutTailBytes)
	e.printf("Error: %v\n", err)
	e.printf("Output tail:\n%s\n", result.Stdout)
	e.log.Error("Could not extract WCET bound", "test", tc.Name, "err", err)
	return result
}

func (e *evaluator) report(result *types.TestResult) {
	if result.Failure == types.FailureNone {
		e.printf("PASS: %s (matches expected %d) -> %s\n", result.Name(), result.Bound, result.Verdict)
		return
	}
	e.printf("WARNING: %s (expected %d, got %d, %+d) -> %s\n",
		result.Name(), result.Case.Baseline, result.Bound, result.Delta(), result.Verdict)
	e.log.Warn("WCET differs from baseline", "test", result.Name(),
		"baseline", result.Case.Baseline, "bound", result.Bound, "format", result.Source)
}

func (e *evaluator) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(e.out, format, a...)
}
