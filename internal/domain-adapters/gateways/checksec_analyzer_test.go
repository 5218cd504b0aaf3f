package gateways

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksecFileOutput = `RELRO           STACK CANARY      NX            PIE             RPATH      RUNPATH      FILE
Full RELRO      Canary found      NX enabled    PIE enabled     No RPATH   No RUNPATH   src/zsided
`

func TestChecksecAnalyzer_RPathRunPathReport(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `
case "$1" in
  --file=*) printf '%s' "`+checksecFileOutput+`" ;;
  *) echo "unexpected args: $*" >&2; exit 2 ;;
esac`)

	out, err := NewChecksecAnalyzer(script, nil, nil).RPathRunPathReport(context.Background(), "/repo/src/zsided")

	require.NoError(t, err)
	assert.Equal(t, checksecFileOutput, out)
}

func TestChecksecAnalyzer_RPathRunPathReport_PassesFileFlag(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `echo "$@"`)

	out, err := NewChecksecAnalyzer(script, nil, nil).RPathRunPathReport(context.Background(), "/repo/src/zside-cli")

	require.NoError(t, err)
	assert.Equal(t, "--file=/repo/src/zside-cli\n", out)
}

func TestChecksecAnalyzer_RPathRunPathReport_NonzeroExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `echo "partial"; exit 3`)

	out, err := NewChecksecAnalyzer(script, nil, nil).RPathRunPathReport(context.Background(), "bin")

	require.Error(t, err)
	assert.Equal(t, "partial\n", out)
}

func TestChecksecAnalyzer_RPathRunPathReport_MissingScript(t *testing.T) {
	analyzer := NewChecksecAnalyzer(filepath.Join(t.TempDir(), "missing.sh"), nil, nil)

	_, err := analyzer.RPathRunPathReport(context.Background(), "bin")

	assert.Error(t, err)
}

func TestChecksecAnalyzer_FortifyReport(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `
echo "* FORTIFY_SOURCE support available (libc)    : Yes"
echo "* Binary compiled with FORTIFY_SOURCE support: Yes"
echo ""
echo " ------ EXECUTABLE-FILE ------- . -------- LIBC --------"`)

	lines, err := NewChecksecAnalyzer(script, nil, nil).FortifyReport(context.Background(), "src/zsided")

	require.NoError(t, err)
	assert.Equal(t, "* FORTIFY_SOURCE support available (libc)    : Yes", lines[0])
	assert.Equal(t, "* Binary compiled with FORTIFY_SOURCE support: Yes", lines[1])
}

func TestChecksecAnalyzer_FortifyReport_TerminatesLongRunningAnalyzer(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `
echo "FORTIFY_SOURCE support available: Yes"
echo "Binary compiled with FORTIFY_SOURCE support: Yes"
exec sleep 30`)

	start := time.Now()
	lines, err := NewChecksecAnalyzer(script, nil, nil).FortifyReport(context.Background(), "src/zsided")

	require.NoError(t, err)
	assert.Equal(t, "Binary compiled with FORTIFY_SOURCE support: Yes", lines[1])
	assert.Less(t, time.Since(start), 10*time.Second, "analyzer should be killed after two lines")
}

func TestChecksecAnalyzer_FortifyReport_ShortOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `echo "FORTIFY_SOURCE support available: No"`)

	lines, err := NewChecksecAnalyzer(script, nil, nil).FortifyReport(context.Background(), "src/zsided")

	require.NoError(t, err)
	assert.Equal(t, "FORTIFY_SOURCE support available: No", lines[0])
	assert.Equal(t, "", lines[1])
}

func TestChecksecAnalyzer_FortifyReport_MissingScript(t *testing.T) {
	analyzer := NewChecksecAnalyzer(filepath.Join(t.TempDir(), "missing.sh"), nil, nil)

	_, err := analyzer.FortifyReport(context.Background(), "bin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestChecksecAnalyzer_FortifyReport_StderrGoesToWriter(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "checksec.sh", `
echo "warning: libc not found, assuming glibc" >&2
echo "FORTIFY_SOURCE support available: Yes"
echo "Binary compiled with FORTIFY_SOURCE support: Yes"`)

	var stderr bytes.Buffer
	lines, err := NewChecksecAnalyzer(script, &stderr, nil).FortifyReport(context.Background(), "src/zsided")

	require.NoError(t, err)
	assert.Equal(t, "FORTIFY_SOURCE support available: Yes", lines[0])
	assert.Equal(t, "warning: libc not found, assuming glibc\n", stderr.String())
}

func TestChecksecAnalyzer_FortifyReport_KillsBackgroundChildren(t *testing.T) {
	dir := t.TempDir()
	// the background sleep inherits stderr and would keep Wait blocked
	script := writeScript(t, dir, "checksec.sh", `
sleep 30 &
echo "FORTIFY_SOURCE support available: Yes"
echo "Binary compiled with FORTIFY_SOURCE support: Yes"
wait`)

	start := time.Now()
	lines, err := NewChecksecAnalyzer(script, &bytes.Buffer{}, nil).FortifyReport(context.Background(), "src/zsided")

	require.NoError(t, err)
	assert.Equal(t, "Binary compiled with FORTIFY_SOURCE support: Yes", lines[1])
	assert.Less(t, time.Since(start), 5*time.Second, "background children should be killed with the analyzer")
}

func TestPartialReader_CloseIsIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "direct child", script: "exec sleep 30"},
		{name: "background grandchild", script: "sleep 30 & wait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := startPartialReader(context.Background(), &bytes.Buffer{}, "/bin/sh", "-c", tt.script)
			require.NoError(t, err)

			start := time.Now()
			assert.NoError(t, proc.Close())
			assert.NoError(t, proc.Close())
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}
