package regress

import (
	"errors"
	"fmt"
)

// RuntimeError represents a harness misconfiguration that should lead to exit code 2
// Examples include an unreadable suite file or invalid flag values.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// SetupError represents a precondition failure that prevented any test from
// running, such as a missing analyzer binary (exit code 1)
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failure: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError creates a new SetupError
func NewSetupError(err error) *SetupError {
	return &SetupError{Err: err}
}

// IsSetupError checks if the error is or wraps a SetupError
func IsSetupError(err error) bool {
	var setupErr *SetupError
	return err != nil && errors.As(err, &setupErr)
}

// TestFailureError represents a RED overall verdict (exit code 1)
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}
