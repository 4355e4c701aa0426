package regress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/honeycombio/otel-config-go/otelconfig"

	"github.com/llta-project/llta-regress/exitcodes"
	"github.com/llta-project/llta-regress/runner"
	"github.com/llta-project/llta-regress/types"
)

// harness implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &harness{}

// harness runs the regression suite once and reports the overall verdict.
type harness struct {
	ctx       context.Context
	config    *Config
	version   string
	runner    runner.SuiteRunner
	formatter ResultFormatter
	reporter  MetricsReporter
	result    *runner.SuiteResult
	out       io.Writer

	running atomic.Bool

	shutdownTracing  func()
	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*harness, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Log == nil {
		return nil, errors.New("logger is required")
	}
	if shutdownCallback == nil {
		shutdownCallback = func(error) {}
	}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	config.Log.Debug("Creating harness with config",
		"analyzer", config.AnalyzerPath,
		"suite", config.SuiteFile,
		"tests", len(config.Tests),
		"summaryTable", config.SummaryTable,
		"metricsTextfile", config.MetricsTextfile,
		"tracing", config.TracingEnabled)

	suiteRunner, err := runner.NewSuiteRunner(runner.Config{
		AnalyzerPath: config.AnalyzerPath,
		Tests:        config.Tests,
		Log:          config.Log,
		Out:          out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suite runner: %w", err)
	}

	shutdownTracing := func() {}
	if config.TracingEnabled {
		shutdownTracing, err = otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName("llta-regress"),
			otelconfig.WithServiceVersion(version),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
	}

	return &harness{
		ctx:              ctx,
		config:           config,
		version:          version,
		runner:           suiteRunner,
		formatter:        NewConsoleResultFormatter(config.Log, out, config.SummaryTable),
		reporter:         NewDefaultMetricsReporter(config.Log, config.MetricsTextfile),
		out:              out,
		shutdownTracing:  shutdownTracing,
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the suite once.
// Start implements the cliapp.Lifecycle interface.
func (h *harness) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			h.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	h.ctx = ctx
	h.running.Store(true)
	h.config.Log.Info("Starting llta-regress", "version", h.version)

	h.printf("=== LLTA Regression Test ===\n")
	h.printf("LLTA Executable: %s\n\n", h.config.AnalyzerPath)

	if err := h.runTests(ctx); err != nil {
		return err
	}

	if h.result.Overall == types.VerdictRed {
		h.config.Log.Warn("Regression run completed with failures, returning exit code 1")
		return NewTestFailureError(fmt.Sprintf("overall verdict %s", h.result.Overall))
	}

	h.config.Log.Info("Regression run completed", "overall", h.result.Overall)
	go func() {
		h.shutdownCallback(nil)
	}()
	return nil
}

// runTests runs the suite and prints the results
func (h *harness) runTests(ctx context.Context) error {
	result, err := h.runner.RunSuite(ctx)
	if errors.Is(err, runner.ErrAnalyzerNotFound) {
		h.printf("Error: LLTA executable not found.\n")
		return NewSetupError(err)
	}
	if err != nil {
		h.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}
	h.result = result

	if err := h.formatter.FormatResults(result); err != nil {
		return NewRuntimeError(fmt.Errorf("failed to print results: %w", err))
	}
	// Metrics export never changes the verdict.
	if err := h.reporter.ReportResults(result); err != nil {
		h.config.Log.Error("Failed to report metrics", "error", err)
	}
	h.config.Log.Info("Test run completed", "run_id", result.RunID, "overall", result.Overall)
	return nil
}

// Stop implements the cliapp.Lifecycle interface.
func (h *harness) Stop(ctx context.Context) error {
	if !h.running.Swap(false) {
		h.config.Log.Debug("Harness already stopped, nothing to do")
		return nil
	}
	h.shutdownTracing()
	h.config.Log.Info("llta-regress stopped")
	return nil
}

// Stopped implements the cliapp.Lifecycle interface.
func (h *harness) Stopped() bool {
	return !h.running.Load()
}

// Result returns the result of the last run, or nil.
func (h *harness) Result() *runner.SuiteResult {
	return h.result
}

func (h *harness) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(h.out, format, a...)
}
