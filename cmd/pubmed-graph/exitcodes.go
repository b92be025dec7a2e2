// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config, store unreachable)
	ExitNotFound    = 3 // One or more requested articles are not in the graph
)

// exitError carries a process exit code through cobra's RunE. A nil err
// exits silently with code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status"
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withExit(code int, err error) error {
	return &exitError{code: code, err: err}
}
