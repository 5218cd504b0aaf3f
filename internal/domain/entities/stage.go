// Package entities defines core domain models and data structures.
package entities

import (
	"context"
	"strings"
	"time"
)

// ActionKind distinguishes the two variants of Action
type ActionKind int

const (
	// ActionShell runs an external command; success is exit code zero
	ActionShell ActionKind = iota
	// ActionCheck runs an in-process check function
	ActionCheck
)

// String returns the kind name
func (k ActionKind) String() string {
	switch k {
	case ActionShell:
		return "shell"
	case ActionCheck:
		return "check"
	default:
		return "unknown"
	}
}

// CheckFunc is an in-process stage check.
// The bool is the stage outcome. A non-nil error means the run cannot continue
// (for example a required build artifact is unreadable).
type CheckFunc func(ctx context.Context) (bool, error)

// Action is the unit of work behind a stage
type Action struct {
	Kind    ActionKind
	Command string
	Args    []string
	Check   CheckFunc
}

// ShellAction creates an action that runs command with args
func ShellAction(command string, args ...string) Action {
	return Action{
		Kind:    ActionShell,
		Command: command,
		Args:    args,
	}
}

// CheckAction creates an action backed by an in-process check
func CheckAction(fn CheckFunc) Action {
	return Action{
		Kind:  ActionCheck,
		Check: fn,
	}
}

// String renders the action for logs
func (a Action) String() string {
	if a.Kind == ActionShell {
		return strings.TrimSpace(a.Command + " " + strings.Join(a.Args, " "))
	}
	return "<" + a.Kind.String() + ">"
}

// Stage is a named, independently runnable verification step
type Stage struct {
	Name        string
	Description string
	Action      Action
}

// StageOutcome records the result of one stage execution
type StageOutcome struct {
	Name     string
	Passed   bool
	Duration time.Duration
}

// RunResult holds the outcomes of a single driver invocation, in execution order
type RunResult struct {
	RunID    string
	Outcomes []StageOutcome
	Duration time.Duration
}

// AllPassed folds the outcomes with logical AND. An empty run passes.
func (r *RunResult) AllPassed() bool {
	return AllPassed(r.Outcomes)
}

// FailedStages returns the names of failed stages in run order
func (r *RunResult) FailedStages() []string {
	failed := make([]string, 0)
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o.Name)
		}
	}
	return failed
}

// AllPassed reports whether every outcome passed
func AllPassed(outcomes []StageOutcome) bool {
	passed := true
	for _, o := range outcomes {
		passed = passed && o.Passed
	}
	return passed
}
