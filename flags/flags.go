package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

const EnvVarPrefix = "LLTA_REGRESS"

var (
	Analyzer = &cli.StringFlag{
		Name:    "analyzer",
		Value:   "build/bin/llta",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "ANALYZER"),
		Usage:   "Path to the LLTA analyzer binary",
	}
	FixturesDir = &cli.StringFlag{
		Name:    "fixtures-dir",
		Value:   "tests",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FIXTURES_DIR"),
		Usage:   "Directory relative fixture paths are resolved against. Overrides the suite file's fixtures_dir when set.",
	}
	Suite = &cli.StringFlag{
		Name:    "suite",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUITE"),
		Usage:   "Path to a YAML or TOML suite file (eg. 'suite.yaml'). Omit to run the built-in suite.",
	}
	SingleTimeout = &cli.DurationFlag{
		Name:    "timeout.single",
		Value:   60 * time.Second,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TIMEOUT_SINGLE"),
		Usage:   "Timeout for a single-solver analyzer run. Overrides the suite file default when set.",
	}
	MultiTimeout = &cli.DurationFlag{
		Name:    "timeout.multi",
		Value:   5 * time.Minute,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TIMEOUT_MULTI"),
		Usage:   "Timeout for a multi-solver analyzer run. Overrides the suite file default when set.",
	}
	SummaryTable = &cli.BoolFlag{
		Name:    "summary.table",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUMMARY_TABLE"),
		Usage:   "Print a results table before the plain summary lines",
	}
	MetricsTextfile = &cli.StringFlag{
		Name:    "metrics.textfile",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "METRICS_TEXTFILE"),
		Usage:   "Write run metrics to this file in the node exporter textfile format. Disabled when empty.",
	}
	TracingEnabled = &cli.BoolFlag{
		Name:    "tracing.enabled",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TRACING_ENABLED"),
		Usage:   "Export OpenTelemetry spans for the run (configured through the standard OTEL_* variables)",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Analyzer,
	FixturesDir,
	Suite,
	SingleTimeout,
	MultiTimeout,
	SummaryTable,
	MetricsTextfile,
	TracingEnabled,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
