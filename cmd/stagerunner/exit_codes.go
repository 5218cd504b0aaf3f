package main

import (
	"errors"

	orchestrators "github.com/ochairo/stagerunner/internal/domain-orchestrators"
)

// Process exit codes
const (
	exitPassed      = 0
	exitStageFailed = 1
	exitUsage       = 2
	exitFatal       = 3
)

// errStagesFailed signals a completed run with at least one failed stage
var errStagesFailed = errors.New("one or more test stages failed")

// usageError wraps bad flags and arguments
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps a run error to the process exit code. Anything not otherwise
// classified is a fatal configuration error.
func exitCode(err error) int {
	if err == nil {
		return exitPassed
	}

	var invalid *orchestrators.InvalidStageError
	var usage *usageError
	switch {
	case errors.As(err, &invalid), errors.As(err, &usage):
		return exitUsage
	case errors.Is(err, errStagesFailed):
		return exitStageFailed
	default:
		return exitFatal
	}
}
