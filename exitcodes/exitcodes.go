// Package exitcodes defines the standard exit codes used by llta-regress.
package exitcodes

// Exit code constants used by llta-regress
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the overall verdict is GREEN or YELLOW
// * TestFailure (1): Used when the overall verdict is RED
// * SetupFailure (1): Used when the analyzer binary is missing and no test could run
// * RuntimeErr (2): Used when the harness itself is misconfigured (bad flags, bad suite file)
const (
	Success      = 0 // GREEN or YELLOW
	TestFailure  = 1 // RED
	SetupFailure = 1 // Analyzer binary missing
	RuntimeErr   = 2 // Harness misconfiguration
)
