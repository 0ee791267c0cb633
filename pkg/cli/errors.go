package cli

import "fmt"

// UsageError marks a command invocation rejected before any remote call:
// contradictory flags, missing identifier sources, bad values.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// NewUsageError formats a UsageError.
func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// CommandError wraps a failure from a command execution with the command
// name for context.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
