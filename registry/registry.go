package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/llta-project/llta-regress/runner"
	"github.com/llta-project/llta-regress/types"
)

// ErrUnsupportedSuiteFormat is returned for suite files that are neither YAML nor TOML
var ErrUnsupportedSuiteFormat = errors.New("unsupported suite file format")

// Registry resolves a suite configuration into an ordered list of test cases
type Registry struct {
	config Config
	tests  []types.TestCase
	mu     sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log log.Logger
	// SuiteFile is a YAML or TOML suite. Empty selects DefaultSuite.
	SuiteFile string
	// FixturesDir overrides the suite's fixtures_dir when set.
	FixturesDir string
	// SingleTimeout and MultiTimeout override the suite's default timeouts when non-zero.
	SingleTimeout time.Duration
	MultiTimeout  time.Duration
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.SingleTimeout < 0 || cfg.MultiTimeout < 0 {
		return nil, fmt.Errorf("timeouts cannot be negative")
	}

	r := &Registry{
		config: cfg,
	}

	if err := r.loadTests(); err != nil {
		return nil, fmt.Errorf("failed to load suite: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "suite", r.suiteName(), "len(tests)", len(r.tests))

	return r, nil
}

func (r *Registry) suiteName() string {
	if r.config.SuiteFile == "" {
		return "built-in"
	}
	return r.config.SuiteFile
}

// loadTests loads the suite and resolves it into test cases
func (r *Registry) loadTests() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	suite := DefaultSuite()
	baseDir := ""
	if r.config.SuiteFile != "" {
		var err error
		suite, err = loadSuite(r.config.SuiteFile)
		if err != nil {
			return err
		}
		baseDir = filepath.Dir(r.config.SuiteFile)
	}

	if err := validateSuite(suite); err != nil {
		return fmt.Errorf("invalid suite: %w", err)
	}

	fixturesDir, err := r.resolveFixturesDir(suite, baseDir)
	if err != nil {
		return err
	}

	tests := make([]types.TestCase, 0, len(suite.Tests))
	for _, tc := range suite.Tests {
		tests = append(tests, r.buildTestCase(tc, suite.Defaults.Timeouts, fixturesDir))
	}
	r.tests = tests
	return nil
}

// resolveFixturesDir picks the fixtures dir: caller override, then the suite
// file's value relative to the file, then DefaultFixturesDir.
func (r *Registry) resolveFixturesDir(suite *types.SuiteConfig, baseDir string) (string, error) {
	dir := r.config.FixturesDir
	if dir == "" && suite.FixturesDir != "" {
		dir = suite.FixturesDir
		if !filepath.IsAbs(dir) && baseDir != "" {
			dir = filepath.Join(baseDir, dir)
		}
	}
	if dir == "" {
		dir = DefaultFixturesDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve fixtures dir %q: %w", dir, err)
	}
	return abs, nil
}

func (r *Registry) buildTestCase(tc types.TestConfig, defaults types.TimeoutConfig, fixturesDir string) types.TestCase {
	mode := tc.Mode
	if mode == "" {
		mode = types.TestModeSingle
		if tc.Marker != "" {
			mode = types.TestModeMultiSolver
		}
	}

	fixture := tc.Fixture
	if !filepath.IsAbs(fixture) {
		fixture = filepath.Join(fixturesDir, fixture)
	}

	var args []string
	if tc.StartFunction != "" {
		args = append(args, runner.StartFunctionFlag+tc.StartFunction)
	}
	args = append(args, tc.Args...)

	marker := ""
	if mode == types.TestModeMultiSolver {
		if !slices.Contains(args, runner.ILPSolverAllFlag) {
			args = append(args, runner.ILPSolverAllFlag)
		}
		marker = tc.Marker
		if marker == "" {
			marker = runner.DefaultSuccessMarker
		}
	}

	return types.TestCase{
		Name:          tc.Name,
		Fixture:       fixture,
		Baseline:      tc.Baseline,
		Args:          args,
		SuccessMarker: marker,
		Timeout:       r.timeoutFor(tc, mode, defaults),
		Mode:          mode,
	}
}

// timeoutFor resolves a test's timeout: per test, caller override, suite default, built-in default.
func (r *Registry) timeoutFor(tc types.TestConfig, mode types.TestMode, defaults types.TimeoutConfig) time.Duration {
	if tc.Timeout > 0 {
		return tc.Timeout
	}
	if mode == types.TestModeMultiSolver {
		return firstPositive(r.config.MultiTimeout, defaults.Multi, runner.DefaultMultiSolverTimeout)
	}
	return firstPositive(r.config.SingleTimeout, defaults.Single, runner.DefaultSingleSolverTimeout)
}

func firstPositive(ds ...time.Duration) time.Duration {
	for _, d := range ds {
		if d > 0 {
			return d
		}
	}
	return 0
}

// TestCases returns a copy of the resolved test cases in configured order
func (r *Registry) TestCases() []types.TestCase {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tests := make([]types.TestCase, len(r.tests))
	for i, tc := range r.tests {
		tests[i] = tc.Clone()
	}
	return tests
}

// loadSuite reads a suite file, picking the decoder from the file extension
func loadSuite(path string) (*types.SuiteConfig, error) {
	log.Debug("Reading suite file", "path", path)

	var cfg types.SuiteConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading suite file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing suite file: %w", err)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing suite file: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("parsing suite file: unknown keys %s", strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSuiteFormat, ext)
	}
	return &cfg, nil
}

// validateSuite checks the suite for problems that would prevent a run from being assembled
func validateSuite(suite *types.SuiteConfig) error {
	if suite.Defaults.Timeouts.Single < 0 || suite.Defaults.Timeouts.Multi < 0 {
		return fmt.Errorf("default timeouts cannot be negative")
	}
	seen := make(map[string]bool, len(suite.Tests))
	for i, tc := range suite.Tests {
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("test %d: name is required", i)
		}
		if seen[tc.Name] {
			return fmt.Errorf("test %s: duplicate name", tc.Name)
		}
		seen[tc.Name] = true
		if tc.Fixture == "" {
			return fmt.Errorf("test %s: fixture is required", tc.Name)
		}
		if !tc.Mode.IsValid() {
			return fmt.Errorf("test %s: invalid mode %q", tc.Name, tc.Mode)
		}
		if tc.Mode == types.TestModeSingle && tc.Marker != "" {
			return fmt.Errorf("test %s: marker requires mode %s", tc.Name, types.TestModeMultiSolver)
		}
		if tc.Timeout < 0 {
			return fmt.Errorf("test %s: timeout cannot be negative", tc.Name)
		}
	}
	return nil
}
