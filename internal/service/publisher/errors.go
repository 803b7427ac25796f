package publisher

import (
	"errors"
	"fmt"
)

var (
	// errAlreadyRunning is returned when another pipeline run holds the marker.
	// Whole-pipeline invocations must be serialized by the caller.
	errAlreadyRunning = errors.New("another stack-publisher run is in progress")
	// errToolNotFound is returned by preflight when a required external tool is missing.
	errToolNotFound = errors.New("required tool not found in PATH")
)

// BuildError reports a failed external build procedure. The orchestrator
// aborts the whole run on the first one; a half-published multi-stack
// release is unsafe to leave behind.
type BuildError struct {
	// Package is the name of the package whose build procedure failed.
	Package string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("build procedure for package %s failed: %v", e.Package, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is/As.
func (e *BuildError) Unwrap() error {
	return e.Err
}
