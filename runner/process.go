package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

var _ ProcessRunner = (*processRunner)(nil)

// OutcomeStatus tags how an analyzer invocation ended
type OutcomeStatus int

const (
	// OutcomeSuccess means the analyzer exited with status 0
	OutcomeSuccess OutcomeStatus = iota
	// OutcomeNonZeroExit means the analyzer ran and exited with a non-zero status
	OutcomeNonZeroExit
	// OutcomeTimeout means the analyzer was killed after exceeding its timeout
	OutcomeTimeout
	// OutcomeLaunchError means the analyzer could not be started, or the run was aborted
	OutcomeLaunchError
)

// String implements the Stringer interface for OutcomeStatus
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeNonZeroExit:
		return "non-zero-exit"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeLaunchError:
		return "launch-error"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// RunOutcome is the result of one analyzer invocation.
// Stdout and Stderr are empty for timeouts and launch errors.
type RunOutcome struct {
	Status   OutcomeStatus
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error // Set for every status except OutcomeSuccess
}

// CmdBuilder creates the command for an invocation. The returned func is
// called once the command has finished.
type CmdBuilder func(ctx context.Context, name string, arg ...string) (*exec.Cmd, func())

// ProcessRunner launches a binary and waits for it under a timeout.
type ProcessRunner interface {
	// Run executes binary with args. A zero timeout disables the deadline.
	Run(ctx context.Context, binary string, args []string, timeout time.Duration) *RunOutcome
}

// processRunner implements ProcessRunner
type processRunner struct {
	log             log.Logger
	cmdBuilder      CmdBuilder
	stderrTailBytes int
}

// NewProcessRunner creates a new process runner. A nil cmdBuilder uses DefaultCmdBuilder.
func NewProcessRunner(logger log.Logger, cmdBuilder CmdBuilder) ProcessRunner {
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	if cmdBuilder == nil {
		cmdBuilder = DefaultCmdBuilder
	}
	return &processRunner{
		log:             logger,
		cmdBuilder:      cmdBuilder,
		stderrTailBytes: defaultStderrTailBytes,
	}
}

// DefaultCmdBuilder builds an exec.Cmd that is killed when ctx is done. WaitDelay
// stops Wait from blocking on pipes still held open by orphaned grandchildren.
func DefaultCmdBuilder(ctx context.Context, name string, arg ...string) (*exec.Cmd, func()) {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.WaitDelay = DefaultWaitDelay
	return cmd, func() {}
}

// Run implements ProcessRunner
func (r *processRunner) Run(ctx context.Context, binary string, args []string, timeout time.Duration) *RunOutcome {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	cmd, cleanup := r.cmdBuilder(runCtx, binary, args...)
	defer cleanup()

	var stdout bytes.Buffer
	stderr := newTailWriter(r.stderrTailBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	outcome := &RunOutcome{Duration: time.Since(start)}

	switch {
	case runErr == nil:
		outcome.Status = OutcomeSuccess
		outcome.Stdout = stdout.String()
		outcome.Stderr = stderr.String()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		outcome.Status = OutcomeTimeout
		outcome.ExitCode = -1
		outcome.Err = fmt.Errorf("analyzer timed out after %s", timeout)
	case ctx.Err() != nil:
		outcome.Status = OutcomeLaunchError
		outcome.ExitCode = -1
		outcome.Err = fmt.Errorf("analyzer run aborted: %w", ctx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			outcome.Status = OutcomeNonZeroExit
			outcome.ExitCode = exitErr.ExitCode()
			outcome.Stdout = stdout.String()
			outcome.Stderr = stderr.String()
			outcome.Err = fmt.Errorf("analyzer exited with code %d", exitErr.ExitCode())
		} else {
			outcome.Status = OutcomeLaunchError
			outcome.ExitCode = -1
			outcome.Err = fmt.Errorf("failed to launch analyzer: %w", runErr)
		}
	}

	if stderr.dropped {
		r.log.Debug("Analyzer stderr truncated", "binary", binary, "kept", r.stderrTailBytes)
	}
	r.log.Debug("Analyzer finished", "binary", binary, "status", outcome.Status,
		"exitCode", outcome.ExitCode, "duration", outcome.Duration)
	return outcome
}
