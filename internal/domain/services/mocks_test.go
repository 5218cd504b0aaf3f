package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// recordingReporter captures report lines for assertions
type recordingReporter struct {
	lines []string
	raw   []string
}

func (r *recordingReporter) StageStarted(stage string)  { r.lines = append(r.lines, "start "+stage) }
func (r *recordingReporter) StageFinished(stage string) { r.lines = append(r.lines, "finish "+stage) }
func (r *recordingReporter) StageFailed(stage string)   { r.lines = append(r.lines, "failed "+stage) }
func (r *recordingReporter) RunFailed()                 { r.lines = append(r.lines, "run failed") }

func (r *recordingReporter) Pass(format string, args ...interface{}) {
	r.lines = append(r.lines, "PASS: "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Fail(format string, args ...interface{}) {
	r.lines = append(r.lines, "FAIL: "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Printf(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Raw(output string) { r.raw = append(r.raw, output) }

func (r *recordingReporter) text() string { return strings.Join(r.lines, "\n") }

// mockAnalyzer returns canned checksec output per binary path
type mockAnalyzer struct {
	rpath      map[string]string
	rpathErr   error
	fortify    map[string][2]string
	fortifyErr error
	calls      []string
}

func (m *mockAnalyzer) RPathRunPathReport(_ context.Context, binaryPath string) (string, error) {
	m.calls = append(m.calls, "file "+binaryPath)
	return m.rpath[binaryPath], m.rpathErr
}

func (m *mockAnalyzer) FortifyReport(_ context.Context, binaryPath string) ([2]string, error) {
	m.calls = append(m.calls, "fortify "+binaryPath)
	return m.fortify[binaryPath], m.fortifyErr
}

// mockRunner records commands and fails those listed in failing
type mockRunner struct {
	specs   []entities.CommandSpec
	failing map[string]bool // keyed by the last argument or the command name
}

func (m *mockRunner) RunCommand(_ context.Context, spec entities.CommandSpec) *entities.CommandResult {
	m.specs = append(m.specs, spec)
	key := spec.Name
	if len(spec.Args) > 0 {
		key = spec.Args[len(spec.Args)-1]
	}
	if m.failing[key] {
		return &entities.CommandResult{ExitCode: 1, Error: fmt.Errorf("exit status 1")}
	}
	return &entities.CommandResult{Success: true}
}

// mockInspector answers IsELF with a fixed result
type mockInspector struct {
	elf bool
	err error
}

func (m *mockInspector) IsELF(_ string) (bool, error) { return m.elf, m.err }

// mockLocator serves a fixed architecture directory and library listing
type mockLocator struct {
	archDir    string
	findErr    error
	notDir     bool
	libraries  []string
	listErr    error
	listedFrom string
}

func (m *mockLocator) FindArchDir(_ string) (string, error) {
	if m.findErr != nil {
		return "", m.findErr
	}
	return m.archDir, nil
}

func (m *mockLocator) ListLibraries(libDir string) ([]string, error) {
	m.listedFrom = libDir
	return m.libraries, m.listErr
}

func (m *mockLocator) IsDirectory(_ string) bool { return !m.notDir }

// mockToolVerifier rejects the tools listed in untrusted
type mockToolVerifier struct {
	untrusted map[string]bool
	verified  []string
}

func (m *mockToolVerifier) VerifyTool(_ context.Context, pin entities.ToolPin) error {
	m.verified = append(m.verified, pin.Path)
	if m.untrusted[pin.Path] {
		return fmt.Errorf("checksum mismatch")
	}
	return nil
}
