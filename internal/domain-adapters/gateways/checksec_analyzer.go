package gateways

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/ochairo/stagerunner/internal/domain/interfaces"
)

// ChecksecAnalyzer captures output from the checksec.sh analyzer script
type ChecksecAnalyzer struct {
	scriptPath string
	stderr     io.Writer
	logger     interfaces.Logger
}

// NewChecksecAnalyzer creates an analyzer adapter for the script at scriptPath.
// Stderr of the fortify run goes to stderr; nil discards it.
func NewChecksecAnalyzer(scriptPath string, stderr io.Writer, logger interfaces.Logger) *ChecksecAnalyzer {
	if stderr == nil {
		stderr = io.Discard
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ChecksecAnalyzer{
		scriptPath: scriptPath,
		stderr:     stderr,
		logger:     logger,
	}
}

// RPathRunPathReport runs "checksec.sh --file=<binary>" and returns its full stdout.
// On a nonzero exit the captured output is returned together with the error.
func (a *ChecksecAnalyzer) RPathRunPathReport(ctx context.Context, binaryPath string) (string, error) {
	//nolint:gosec // G204: analyzer path comes from the suite configuration
	cmd := exec.CommandContext(ctx, a.scriptPath, "--file="+binaryPath)
	startInProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("checksec --file failed: %w\nstderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}

// FortifyReport runs "checksec.sh --fortify-file=<binary>" and returns the first
// two lines of stdout. The process is killed once they are read; the rest of
// its output is never needed.
func (a *ChecksecAnalyzer) FortifyReport(ctx context.Context, binaryPath string) ([2]string, error) {
	var lines [2]string

	proc, err := startPartialReader(ctx, a.stderr, a.scriptPath, "--fortify-file="+binaryPath)
	if err != nil {
		return lines, err
	}
	defer func() {
		if closeErr := proc.Close(); closeErr != nil {
			a.logger.Debug("fortify report cleanup", interfaces.F("error", closeErr))
		}
	}()

	read, err := proc.ReadLines(len(lines))
	copy(lines[:], read)
	if err != nil {
		return lines, fmt.Errorf("failed to read checksec --fortify-file output: %w", err)
	}

	return lines, nil
}

// partialReader owns a child process whose stdout is consumed partially.
// Close kills and reaps the process and is safe to call more than once.
type partialReader struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	once   sync.Once
	err    error
}

func startPartialReader(ctx context.Context, stderr io.Writer, name string, args ...string) (*partialReader, error) {
	//nolint:gosec // G204: analyzer path comes from the suite configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	startInProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return &partialReader{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
	}, nil
}

// ReadLines reads up to n lines without their line terminators.
// Lines missing because the output ended early are returned as empty strings.
func (p *partialReader) ReadLines(n int) ([]string, error) {
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		line, err := p.reader.ReadString('\n')
		lines[i] = strings.TrimRight(line, "\r\n")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, err
		}
	}
	return lines, nil
}

// Close terminates the process group and waits for it to be reaped
func (p *partialReader) Close() error {
	p.once.Do(func() {
		if err := killProcessGroup(p.cmd); err != nil {
			p.err = fmt.Errorf("failed to kill %s: %w", p.cmd.Path, err)
		}
		// Wait reports the kill signal or a closed-pipe exit; neither is interesting here
		_ = p.cmd.Wait()
	})
	return p.err
}
