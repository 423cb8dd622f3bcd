package mcp

import (
	"fmt"
	"time"
)

// The error kinds below are deliberately distinct types rather than
// wrapped sentinel strings: the workflow driver reacts differently to
// "the tool took too long" (retryable, handle still usable) than to
// "the tool explicitly failed" (report the tool's own message), and
// callers select on them with errors.As.

// LaunchError means a tool-source subprocess could not be started at
// all (binary missing, permission denied). Fatal to that source.
type LaunchError struct {
	Source string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch tool source %q: %v", e.Source, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// HandshakeError means the subprocess started but did not complete the
// initialize exchange within the startup timeout. Fatal to that source;
// the spawned process is killed before this is returned.
type HandshakeError struct {
	Source string
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("tool source %q failed initialization handshake: %v", e.Source, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// UnknownSourceError means a caller referenced a source name with no
// registered handle. Configuration error; never retried.
type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown tool source: %q", e.Source)
}

// ToolTimeoutError means one call exceeded its response deadline. The
// subprocess is NOT killed; the handle stays usable for later calls.
type ToolTimeoutError struct {
	Source  string
	Tool    string
	Timeout time.Duration
}

func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf("tool %s.%s timed out after %s", e.Source, e.Tool, e.Timeout)
}

// ToolExecutionError carries the error message the tool itself reported
// (malformed arguments, upstream database failure, ...).
type ToolExecutionError struct {
	Source  string
	Tool    string
	Message string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s.%s failed: %s", e.Source, e.Tool, e.Message)
}
