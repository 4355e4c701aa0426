package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"

	regress "github.com/llta-project/llta-regress"
	"github.com/llta-project/llta-regress/exitcodes"
	"github.com/llta-project/llta-regress/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "llta-regress"
	app.Usage = "LLTA WCET regression harness"
	app.Description = "llta-regress runs the LLTA analyzer against fixed fixtures and compares the WCET bounds with recorded baselines"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitCodeFor(err)))
		}
	}

	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// exitCodeFor maps typed harness errors to process exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case regress.IsRuntimeError(err):
		return exitcodes.RuntimeErr
	case regress.IsSetupError(err):
		return exitcodes.SetupFailure
	case regress.IsTestFailureError(err):
		return exitcodes.TestFailure
	default:
		// For other unspecified errors, default to exit code 1
		return exitcodes.TestFailure
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := regress.NewConfig(ctx, log)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, regress.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "analyzer", cfg.AnalyzerPath, "suite", cfg.SuiteFile, "tests", len(cfg.Tests))

	h, err := regress.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, regress.NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
	}

	return h, nil
}
