// Package runner provides components for running the LLTA analyzer against
// regression fixtures and classifying the results.
//
// The main components are:
//   - ProcessRunner: Launches the analyzer under a timeout and returns a tagged RunOutcome
//   - OutputParser: Recovers the WCET bound from the legacy or the multi-solver report
//   - Evaluator: Classifies a single TestCase as GREEN, YELLOW or RED
//   - SuiteRunner: Evaluates test cases in order and folds their verdicts
//
// Test cases are evaluated strictly sequentially; the only concurrency is the
// per-invocation timeout that kills an unresponsive analyzer.
package runner
