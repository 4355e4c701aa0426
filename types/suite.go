package types

import "time"

// SuiteConfig is the on-disk schema of a suite file. The same struct is
// decoded from YAML and from TOML.
type SuiteConfig struct {
	FixturesDir string        `yaml:"fixtures_dir,omitempty" toml:"fixtures_dir"`
	Defaults    SuiteDefaults `yaml:"defaults,omitempty" toml:"defaults"`
	Tests       []TestConfig  `yaml:"tests" toml:"tests"`
}

// SuiteDefaults holds values applied to every test that doesn't set its own.
type SuiteDefaults struct {
	Timeouts TimeoutConfig `yaml:"timeouts,omitempty" toml:"timeouts"`
}

// TimeoutConfig holds per-mode default timeouts.
type TimeoutConfig struct {
	Single time.Duration `yaml:"single,omitempty" toml:"single"`
	Multi  time.Duration `yaml:"multi,omitempty" toml:"multi"`
}

// TestConfig represents a test configuration
type TestConfig struct {
	Name          string        `yaml:"name" toml:"name"`
	Fixture       string        `yaml:"fixture" toml:"fixture"`
	Baseline      uint64        `yaml:"baseline" toml:"baseline"`
	StartFunction string        `yaml:"start_function,omitempty" toml:"start_function"`
	Mode          TestMode      `yaml:"mode,omitempty" toml:"mode"`
	Args          []string      `yaml:"args,omitempty" toml:"args"`
	Marker        string        `yaml:"marker,omitempty" toml:"marker"`
	Timeout       time.Duration `yaml:"timeout,omitempty" toml:"timeout"`
}
