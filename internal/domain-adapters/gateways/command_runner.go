// Package gateways provides adapter implementations for external tools and the filesystem.
package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
)

// waitDelay bounds how long Wait keeps draining output after the process
// group has been killed
const waitDelay = 2 * time.Second

// CommandRunner runs external processes with their output streamed to the report
type CommandRunner struct {
	stdout io.Writer
	stderr io.Writer
	logger interfaces.Logger
}

// NewCommandRunner creates a command runner writing child output to stdout and stderr
func NewCommandRunner(stdout, stderr io.Writer, logger interfaces.Logger) *CommandRunner {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &CommandRunner{
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// RunCommand runs the command and blocks until it exits.
// A process that cannot be started and one that exits nonzero are both unsuccessful.
func (r *CommandRunner) RunCommand(ctx context.Context, spec entities.CommandSpec) *entities.CommandResult {
	startTime := time.Now()
	result := &entities.CommandResult{}

	//nolint:gosec // G204: commands come from the suite configuration
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	startInProcessGroup(cmd)

	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}

	if len(spec.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), spec.Env)
	}

	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	description := spec.Description
	if description == "" {
		description = spec.Name
	}
	r.logger.Debug("executing command",
		interfaces.F("command", spec.Name),
		interfaces.F("args", spec.Args),
		interfaces.F("dir", spec.Dir),
		interfaces.F("description", description))

	err := cmd.Run()
	result.Duration = time.Since(startTime)

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if ctx.Err() != nil {
			result.Error = fmt.Errorf("%s interrupted: %w", description, ctx.Err())
			result.ExitCode = -1
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = fmt.Errorf("failed to start %s: %w", description, err)
			result.ExitCode = -1
		}
		r.logger.Warn("command failed",
			interfaces.F("command", spec.Name),
			interfaces.F("exit_code", result.ExitCode),
			interfaces.F("error", result.Error))
		return result
	}

	result.Success = true
	result.ExitCode = 0
	r.logger.Debug("command succeeded",
		interfaces.F("command", spec.Name),
		interfaces.F("duration", result.Duration))
	return result
}

// mergeEnv overlays overrides on base. Overrides replace existing keys.
func mergeEnv(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		if _, overridden := overrides[envKey(kv)]; overridden {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, overrides[key]))
	}
	return env
}

func envKey(kv string) string {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i]
		}
	}
	return kv
}
