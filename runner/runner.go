package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/llta-project/llta-regress/metrics"
	"github.com/llta-project/llta-regress/types"
)

// ErrAnalyzerNotFound is returned by RunSuite when the analyzer binary is missing.
// No test is evaluated in that case.
var ErrAnalyzerNotFound = errors.New("analyzer binary not found")

// SuiteResult captures the aggregated results of one regression run
type SuiteResult struct {
	RunID    string
	Results  []*types.TestResult // In configured order
	Overall  types.Verdict
	Duration time.Duration
	Stats    ResultStats
}

// ResultStats counts tests per verdict
type ResultStats struct {
	Total     int
	Green     int
	Yellow    int
	Red       int
	StartTime time.Time
	EndTime   time.Time
}

func (s *ResultStats) add(v types.Verdict) {
	s.Total++
	switch v {
	case types.VerdictGreen:
		s.Green++
	case types.VerdictYellow:
		s.Yellow++
	default:
		s.Red++
	}
}

// Verdicts returns the per-test verdicts in configured order.
func (r *SuiteResult) Verdicts() []types.Verdict {
	verdicts := make([]types.Verdict, len(r.Results))
	for i, res := range r.Results {
		verdicts[i] = res.Verdict
	}
	return verdicts
}

// SuiteRunner runs an ordered list of regression tests
type SuiteRunner interface {
	RunSuite(ctx context.Context) (*SuiteResult, error)
}

// Config holds configuration for creating a new suite runner
type Config struct {
	AnalyzerPath string
	Tests        []types.TestCase
	Log          log.Logger
	Out          io.Writer     // Human readable progress; defaults to io.Discard
	Process      ProcessRunner // Defaults to NewProcessRunner
	Parser       OutputParser  // Defaults to NewOutputParser
}

// runner struct implements SuiteRunner interface
type runner struct {
	analyzer  string
	tests     []types.TestCase
	evaluator Evaluator
	log       log.Logger
	tracer    trace.Tracer
}

var _ SuiteRunner = (*runner)(nil)

// NewSuiteRunner creates a new suite runner. An empty test list is allowed
// and yields a Green run.
func NewSuiteRunner(cfg Config) (SuiteRunner, error) {
	if cfg.AnalyzerPath == "" {
		return nil, errors.New("analyzer path cannot be empty")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	evaluator, err := NewEvaluator(EvaluatorConfig{
		AnalyzerPath: cfg.AnalyzerPath,
		Process:      cfg.Process,
		Parser:       cfg.Parser,
		Log:          cfg.Log,
		Out:          cfg.Out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	tests := make([]types.TestCase, len(cfg.Tests))
	for i, tc := range cfg.Tests {
		tests[i] = tc.Clone()
	}

	cfg.Log.Debug("NewSuiteRunner()", "analyzer", cfg.AnalyzerPath, "tests", len(tests))

	return &runner{
		analyzer:  cfg.AnalyzerPath,
		tests:     tests,
		evaluator: evaluator,
		log:       cfg.Log,
		tracer:    otel.Tracer("test runner"),
	}, nil
}

// RunSuite implements the SuiteRunner interface
func (r *runner) RunSuite(ctx context.Context) (*SuiteResult, error) {
	if err := checkAnalyzer(r.analyzer); err != nil {
		r.log.Error("Analyzer not available", "path", r.analyzer, "err", err)
		metrics.RecordErrorDetails("analyzer", err)
		return nil, err
	}

	runID := uuid.New().String()
	ctx, span := r.tracer.Start(ctx, "suite", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("tests", len(r.tests)),
	))
	defer span.End()

	start := time.Now()
	r.log.Info("Running regression suite", "run_id", runID, "analyzer", r.analyzer, "tests", len(r.tests))

	result := &SuiteResult{
		RunID:   runID,
		Results: make([]*types.TestResult, 0, len(r.tests)),
		Stats:   ResultStats{StartTime: start},
	}

	for i, tc := range r.tests {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Regression suite interrupted", "run_id", runID, "completed", i, "total", len(r.tests))
			span.SetStatus(codes.Error, "interrupted")
			return nil, fmt.Errorf("suite interrupted: %w", err)
		}
		res := r.runTest(ctx, tc)
		metrics.RecordTest(runID, res)
		result.Results = append(result.Results, res)
		result.Stats.add(res.Verdict)
	}

	result.Overall = types.Worst(result.Verdicts()...)
	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()

	span.SetAttributes(attribute.String("verdict", result.Overall.String()))
	if result.Overall == types.VerdictRed {
		span.SetStatus(codes.Error, "suite failed")
	}
	r.log.Info("Regression suite finished", "run_id", runID, "overall", result.Overall,
		"green", result.Stats.Green, "yellow", result.Stats.Yellow, "red", result.Stats.Red,
		"duration", result.Duration)
	return result, nil
}

func (r *runner) runTest(ctx context.Context, tc types.TestCase) *types.TestResult {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", tc.Name))
	defer span.End()

	res := r.evaluator.Evaluate(ctx, tc)

	span.SetAttributes(
		attribute.String("test", tc.Name),
		attribute.String("verdict", res.Verdict.String()),
		attribute.String("failure", res.Failure.String()),
		attribute.Int64("baseline", int64(tc.Baseline)),
	)
	if res.HasBound {
		span.SetAttributes(
			attribute.Int64("bound", int64(res.Bound)),
			attribute.String("bound_format", res.Source),
		)
	}
	if res.Verdict == types.VerdictRed && res.Error != nil {
		span.RecordError(res.Error)
		span.SetStatus(codes.Error, res.Error.Error())
	}
	return res
}

// checkAnalyzer verifies the analyzer binary exists and is not a directory.
func checkAnalyzer(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w at %s: %w", ErrAnalyzerNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w at %s: path is a directory", ErrAnalyzerNotFound, path)
	}
	return nil
}
