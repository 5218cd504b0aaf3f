package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

const (
	cleanRPath   = "Full RELRO   Canary found   NX enabled   PIE enabled   No RPATH   No RUNPATH"
	fortifyYes1  = "FORTIFY_SOURCE support available: Yes"
	fortifyYes2  = "Binary compiled with FORTIFY_SOURCE support: Yes"
	fortifyNoUse = "Binary compiled with FORTIFY_SOURCE support: No"
)

type auditFixture struct {
	root      string
	config    *entities.SuiteConfig
	runner    *mockRunner
	inspector *mockInspector
	analyzer  *mockAnalyzer
	tools     *mockToolVerifier
	reporter  *recordingReporter
}

// newAuditFixture builds an audit over two C++ binaries and one Rust binary
// whose analyzer output is clean
func newAuditFixture(t *testing.T, withMakefile bool) *auditFixture {
	t.Helper()

	root := t.TempDir()
	if withMakefile {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0750))
		require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Makefile"), []byte("all:\n"), 0600))
	}

	cfg := entities.DefaultSuiteConfig()
	cfg.Hardening = entities.HardeningTargets{
		CXXBinaries:      []string{"src/zsided", "src/zside-cli"},
		RustBinaries:     []string{"src/zsided-wallet-tool"},
		FallbackPrograms: []string{"src/zsided", "src/zside-cli"},
		FallbackScripts:  []string{"src/zsided-wallet-tool"},
	}

	abs := func(p string) string { return filepath.Join(root, p) }
	return &auditFixture{
		root:      root,
		config:    cfg,
		runner:    &mockRunner{failing: map[string]bool{}},
		inspector: &mockInspector{elf: true},
		analyzer: &mockAnalyzer{
			rpath: map[string]string{
				abs("src/zsided"):             cleanRPath,
				abs("src/zside-cli"):          cleanRPath,
				abs("src/zsided-wallet-tool"): cleanRPath,
			},
			fortify: map[string][2]string{
				abs("src/zsided"):    {fortifyYes1, fortifyYes2},
				abs("src/zside-cli"): {fortifyYes1, fortifyYes2},
			},
		},
		tools:    &mockToolVerifier{untrusted: map[string]bool{}},
		reporter: &recordingReporter{},
	}
}

func (f *auditFixture) audit() bool {
	ok, err := f.service().CheckSecurityHardening(context.Background())
	if err != nil {
		panic(err)
	}
	return ok
}

func (f *auditFixture) service() interface {
	CheckSecurityHardening(ctx context.Context) (bool, error)
} {
	return NewSecurityAuditService(SecurityAuditDeps{
		RepoRoot:  f.root,
		Config:    f.config,
		Runner:    f.runner,
		Inspector: f.inspector,
		Verifier:  NewHardeningVerifier(f.root, f.analyzer, f.reporter, nil),
		Tools:     f.tools,
		Reporter:  f.reporter,
	})
}

func TestSecurityAudit_BuildTargetPath(t *testing.T) {
	f := newAuditFixture(t, true)

	assert.True(t, f.audit())

	require.NotEmpty(t, f.runner.specs)
	first := f.runner.specs[0]
	assert.Equal(t, "make", first.Name)
	assert.Equal(t, []string{"-C", filepath.Join(f.root, "src"), "check-security"}, first.Args)
	assert.Len(t, f.runner.specs, 1, "fallback script must not run when the Makefile exists")
}

func TestSecurityAudit_BuildTargetFailure(t *testing.T) {
	f := newAuditFixture(t, true)
	f.runner.failing["check-security"] = true

	assert.False(t, f.audit())
	// ELF checks still run and report
	assert.Contains(t, f.reporter.text(), "PASS: src/zsided has FORTIFY_SOURCE.")
}

func TestSecurityAudit_FallbackScriptPath(t *testing.T) {
	f := newAuditFixture(t, false)

	assert.True(t, f.audit())

	script := filepath.Join(f.root, "contrib/devtools/security-check.py")
	require.Len(t, f.runner.specs, 3)
	assert.Equal(t, script, f.runner.specs[0].Name)
	assert.Equal(t, []string{filepath.Join(f.root, "src/zsided")}, f.runner.specs[0].Args)
	assert.Equal(t, []string{filepath.Join(f.root, "src/zside-cli")}, f.runner.specs[1].Args)
	assert.Equal(t, []string{"--allow-no-canary", filepath.Join(f.root, "src/zsided-wallet-tool")}, f.runner.specs[2].Args)
	assert.Contains(t, f.reporter.text(), "Checking binary security of ['src/zsided', 'src/zside-cli', 'src/zsided-wallet-tool']...")
}

func TestSecurityAudit_FallbackScriptFailureRunsEverything(t *testing.T) {
	f := newAuditFixture(t, false)
	f.runner.failing[filepath.Join(f.root, "src/zsided")] = true

	assert.False(t, f.audit())
	assert.Len(t, f.runner.specs, 3)
}

func TestSecurityAudit_NonELFSkipsBinaryChecks(t *testing.T) {
	f := newAuditFixture(t, true)
	f.inspector.elf = false

	assert.True(t, f.audit())
	assert.Empty(t, f.analyzer.calls)
}

func TestSecurityAudit_NonELFKeepsEarlierFailure(t *testing.T) {
	f := newAuditFixture(t, true)
	f.inspector.elf = false
	f.runner.failing["check-security"] = true

	assert.False(t, f.audit())
}

func TestSecurityAudit_CheckOrder(t *testing.T) {
	f := newAuditFixture(t, true)

	require.True(t, f.audit())

	abs := func(p string) string { return filepath.Join(f.root, p) }
	assert.Equal(t, []string{
		"file " + abs("src/zsided"),
		"file " + abs("src/zside-cli"),
		"file " + abs("src/zsided-wallet-tool"),
		"fortify " + abs("src/zsided"),
		"fortify " + abs("src/zside-cli"),
	}, f.analyzer.calls)
}

func TestSecurityAudit_SingleBinaryFailureFailsAudit(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *auditFixture)
	}{
		{
			name: "rust binary has runpath",
			mutate: func(f *auditFixture) {
				f.analyzer.rpath[filepath.Join(f.root, "src/zsided-wallet-tool")] = "No RPATH   RUNPATH: [$ORIGIN]"
			},
		},
		{
			name: "cxx binary missing fortify",
			mutate: func(f *auditFixture) {
				f.analyzer.fortify[filepath.Join(f.root, "src/zside-cli")] = [2]string{fortifyYes1, fortifyNoUse}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuditFixture(t, true)
			tt.mutate(f)

			assert.False(t, f.audit())
			// every check still ran
			assert.Len(t, f.analyzer.calls, 5)
		})
	}
}

func TestSecurityAudit_PrimaryArtifactUnreadable(t *testing.T) {
	f := newAuditFixture(t, true)
	f.inspector.err = os.ErrNotExist

	ok, err := f.service().CheckSecurityHardening(context.Background())

	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "src/zsided")
}

func TestSecurityAudit_ToolIntegrity(t *testing.T) {
	t.Run("trusted tools", func(t *testing.T) {
		f := newAuditFixture(t, true)
		f.config.ToolIntegrity.Tools = []entities.ToolPin{{Path: "qa/zcash/checksec.sh", SHA256: "abc"}}

		assert.True(t, f.audit())
		assert.Equal(t, []string{"qa/zcash/checksec.sh"}, f.tools.verified)
	})

	t.Run("untrusted tool stops the audit", func(t *testing.T) {
		f := newAuditFixture(t, true)
		f.config.ToolIntegrity.Tools = []entities.ToolPin{
			{Path: "qa/zcash/checksec.sh", SHA256: "abc"},
			{Path: "contrib/devtools/security-check.py", SHA256: "def"},
		}
		f.tools.untrusted["qa/zcash/checksec.sh"] = true

		assert.False(t, f.audit())
		assert.Empty(t, f.runner.specs)
		assert.Empty(t, f.analyzer.calls)
		assert.Contains(t, f.reporter.text(), "FAIL: qa/zcash/checksec.sh failed integrity verification")
		assert.Len(t, f.tools.verified, 2)
	})
}
