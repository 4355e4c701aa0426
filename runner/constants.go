package runner

import "time"

// Analyzer invocation constants
const (
	// DefaultSingleSolverTimeout bounds a run with the analyzer's default solver
	DefaultSingleSolverTimeout = 60 * time.Second

	// DefaultMultiSolverTimeout bounds a run that cross-validates every solver backend
	DefaultMultiSolverTimeout = 5 * time.Minute

	// DefaultWaitDelay is how long to wait for the output pipes to close after the
	// analyzer has been killed.
	DefaultWaitDelay = 5 * time.Second

	// Analyzer flags
	StartFunctionFlag = "-start-function="
	ILPSolverAllFlag  = "--ilp-solver=all"

	// DefaultSuccessMarker is printed by the analyzer when all ILP backends agree on the bound
	DefaultSuccessMarker = "[SUCCESS] All solvers agree on WCET:"

	// SolverDisagreementMarker is printed instead of the success marker when backends disagree
	SolverDisagreementMarker = "[WARNING] Solvers produced different WCET values!"

	// StdoutTailBytes is how much stdout is attached to an unparseable result
	StdoutTailBytes = 500

	// defaultStderrTailBytes caps the stderr kept for diagnostics
	defaultStderrTailBytes = 64 * 1024
)
