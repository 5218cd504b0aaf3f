package orchestrators

import (
	"context"
	"fmt"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
)

// recordingReporter captures the report as lines
type recordingReporter struct {
	lines []string
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

func (r *recordingReporter) Raw(output string) { r.lines = append(r.lines, output) }

// exitCodeRunner returns a fixed exit code per command and records each call
type exitCodeRunner struct {
	exitCodes map[string]int
	calls     []entities.CommandSpec
	deadlines []bool
}

func (m *exitCodeRunner) RunCommand(ctx context.Context, spec entities.CommandSpec) *entities.CommandResult {
	m.calls = append(m.calls, spec)
	_, hasDeadline := ctx.Deadline()
	m.deadlines = append(m.deadlines, hasDeadline)

	code := m.exitCodes[spec.Name]
	if code != 0 {
		return &entities.CommandResult{ExitCode: code, Error: fmt.Errorf("exit status %d", code)}
	}
	return &entities.CommandResult{Success: true}
}

func (m *exitCodeRunner) commands() []string {
	names := make([]string, len(m.calls))
	for i, c := range m.calls {
		names[i] = c.Name
	}
	return names
}

// recordingLogger keeps messages with their fields
type recordingLogger struct {
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) record(level, msg string, fields []interfaces.Field) {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: m})
}

func (l *recordingLogger) Debug(msg string, fields ...interfaces.Field) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...interfaces.Field)  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interfaces.Field)  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interfaces.Field) { l.record("error", msg, fields) }

func (l *recordingLogger) find(msg string) (logEntry, bool) {
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

// fakeServices stands in for the in-process checks
type fakeServices struct {
	audit, hygiene, rust, util bool
	auditErr                   error
	calls                      []string
}

func (f *fakeServices) CheckSecurityHardening(_ context.Context) (bool, error) {
	f.calls = append(f.calls, "sec-hard")
	return f.audit, f.auditErr
}

func (f *fakeServices) EnsureNoSharedLibraries(_ context.Context) (bool, error) {
	f.calls = append(f.calls, "no-dot-so")
	return f.hygiene, nil
}

func (f *fakeServices) RustTest(_ context.Context) (bool, error) {
	f.calls = append(f.calls, "rust-test")
	return f.rust, nil
}

func (f *fakeServices) UtilTest(_ context.Context) (bool, error) {
	f.calls = append(f.calls, "util-test")
	return f.util, nil
}

func (f *fakeServices) catalogueServices() CatalogueServices {
	return CatalogueServices{Audit: f, Hygiene: f, Toolchain: f}
}
