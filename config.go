package regress

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/llta-project/llta-regress/flags"
	"github.com/llta-project/llta-regress/registry"
	"github.com/llta-project/llta-regress/types"
)

// Config holds the application configuration. It is built once at startup
// and not modified afterwards.
type Config struct {
	AnalyzerPath    string
	SuiteFile       string           // Empty for the built-in suite
	FixturesDir     string           // Only set when given on the command line
	Tests           []types.TestCase // Resolved by the registry, in run order
	SingleTimeout   time.Duration    // Zero unless given on the command line
	MultiTimeout    time.Duration    // Zero unless given on the command line
	SummaryTable    bool             // Print the results table before the plain summary
	MetricsTextfile string           // Empty disables metrics export
	TracingEnabled  bool
	Out             io.Writer // Console output; nil means stdout
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	analyzer := ctx.String(flags.Analyzer.Name)
	if analyzer == "" {
		return nil, errors.New("analyzer path cannot be empty")
	}
	absAnalyzer, err := filepath.Abs(analyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for analyzer '%s': %w", analyzer, err)
	}

	var absSuite string
	if suite := ctx.String(flags.Suite.Name); suite != "" {
		absSuite, err = filepath.Abs(suite)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for suite file '%s': %w", suite, err)
		}
	}

	// Flags with defaults only override the suite file when given explicitly.
	var fixturesDir string
	if ctx.IsSet(flags.FixturesDir.Name) {
		dir := ctx.String(flags.FixturesDir.Name)
		if dir == "" {
			return nil, errors.New("fixtures directory cannot be empty")
		}
		fixturesDir, err = filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for fixtures directory '%s': %w", dir, err)
		}
	}

	var singleTimeout, multiTimeout time.Duration
	if ctx.IsSet(flags.SingleTimeout.Name) {
		singleTimeout = ctx.Duration(flags.SingleTimeout.Name)
		if singleTimeout <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", flags.SingleTimeout.Name, singleTimeout)
		}
	}
	if ctx.IsSet(flags.MultiTimeout.Name) {
		multiTimeout = ctx.Duration(flags.MultiTimeout.Name)
		if multiTimeout <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", flags.MultiTimeout.Name, multiTimeout)
		}
	}

	reg, err := registry.NewRegistry(registry.Config{
		Log:           log,
		SuiteFile:     absSuite,
		FixturesDir:   fixturesDir,
		SingleTimeout: singleTimeout,
		MultiTimeout:  multiTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return &Config{
		AnalyzerPath:    absAnalyzer,
		SuiteFile:       absSuite,
		FixturesDir:     fixturesDir,
		Tests:           reg.TestCases(),
		SingleTimeout:   singleTimeout,
		MultiTimeout:    multiTimeout,
		SummaryTable:    ctx.Bool(flags.SummaryTable.Name),
		MetricsTextfile: ctx.String(flags.MetricsTextfile.Name),
		TracingEnabled:  ctx.Bool(flags.TracingEnabled.Name),
		Log:             log,
	}, nil
}
