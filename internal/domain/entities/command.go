package entities

import "time"

// CommandSpec describes an external process invocation
type CommandSpec struct {
	Name        string
	Args        []string
	Dir         string
	Env         map[string]string // merged over the inherited environment
	Description string
}

// CommandResult contains the result of running a CommandSpec
type CommandResult struct {
	Success  bool
	ExitCode int
	Duration time.Duration
	Error    error
}
