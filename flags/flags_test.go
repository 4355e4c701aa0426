package flags

import (
	"flag"
	"testing"
	"time"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestOptionalFlagsDontSetRequired asserts that all flags deemed optional set
// the Required field to false.
func TestOptionalFlagsDontSetRequired(t *testing.T) {
	for _, flag := range optionalFlags {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired())
	}
}

// TestNoRequiredFlags asserts the harness runs with no arguments at all.
func TestNoRequiredFlags(t *testing.T) {
	assert.Empty(t, requiredFlags)
}

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
			require.Equal(t, opservice.FlagNameToEnvVarName(flagName, EnvVarPrefix), envFlags[0])
		})
	}
}

func TestDefaults(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range cliapp.ProtectFlags(Flags) {
		require.NoError(t, f.Apply(set))
	}
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	require.NoError(t, CheckRequired(ctx))
	assert.Equal(t, "build/bin/llta", ctx.String(Analyzer.Name))
	assert.Equal(t, "tests", ctx.String(FixturesDir.Name))
	assert.Equal(t, "", ctx.String(Suite.Name))
	assert.Equal(t, 60*time.Second, ctx.Duration(SingleTimeout.Name))
	assert.Equal(t, 5*time.Minute, ctx.Duration(MultiTimeout.Name))
	assert.True(t, ctx.Bool(SummaryTable.Name))
	assert.Equal(t, "", ctx.String(MetricsTextfile.Name))
	assert.False(t, ctx.Bool(TracingEnabled.Name))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LLTA_REGRESS_ANALYZER", "/opt/llta/bin/llta")
	t.Setenv("LLTA_REGRESS_TIMEOUT_MULTI", "10m")

	var analyzer string
	var multi time.Duration
	app := &cli.App{
		Flags: cliapp.ProtectFlags(Flags),
		Action: func(ctx *cli.Context) error {
			analyzer = ctx.String(Analyzer.Name)
			multi = ctx.Duration(MultiTimeout.Name)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"llta-regress"}))
	assert.Equal(t, "/opt/llta/bin/llta", analyzer)
	assert.Equal(t, 10*time.Minute, multi)
}
