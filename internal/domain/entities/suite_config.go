package entities

import (
	"fmt"
	"strings"
	"time"
)

// SuiteConfig is the configuration table consumed by the stage catalogue and
// the security audit. All paths are relative to the repository root unless absolute.
type SuiteConfig struct {
	DependsDir          string
	SourceDir           string
	PrimaryArtifact     string
	BuildProjectFile    string
	BuildTool           string
	SecurityTarget      string
	Analyzer            string
	SecurityCheckScript string
	Interpreter         string
	LogLevel            string
	StageTimeout        time.Duration // zero means no timeout
	LockFile            string
	Tests               TestPaths
	Hardening           HardeningTargets
	ToolIntegrity       ToolIntegrity
}

// TestPaths locates the test executables and manifests run by the catalogue
type TestPaths struct {
	BTest         string
	GTest         string
	RPC           string
	UtilTest      string
	CargoManifest string
}

// HardeningTargets lists the binaries inspected by the security audit
type HardeningTargets struct {
	CXXBinaries      []string
	RustBinaries     []string
	FallbackPrograms []string
	FallbackScripts  []string
}

// ToolIntegrity pins the external audit tools
type ToolIntegrity struct {
	Keyring string
	Tools   []ToolPin
}

// ToolPin describes how a single tool is verified
type ToolPin struct {
	Path      string
	SHA256    string
	Signature string
}

// Enabled reports whether any tool is pinned
func (t ToolIntegrity) Enabled() bool {
	return len(t.Tools) > 0
}

// DefaultSuiteConfig returns the configuration matching the standard source tree layout
func DefaultSuiteConfig() *SuiteConfig {
	return &SuiteConfig{
		DependsDir:          "depends",
		SourceDir:           "src",
		PrimaryArtifact:     "src/zsided",
		BuildProjectFile:    "src/Makefile",
		BuildTool:           "make",
		SecurityTarget:      "check-security",
		Analyzer:            "qa/zcash/checksec.sh",
		SecurityCheckScript: "contrib/devtools/security-check.py",
		Interpreter:         "python3",
		LogLevel:            "warn",
		LockFile:            ".stagerunner.lock",
		Tests: TestPaths{
			BTest:         "src/test/test_bitcoin",
			GTest:         "src/zside-gtest",
			RPC:           "qa/pull-tester/rpc-tests.py",
			UtilTest:      "src/test/bitcoin-util-test.py",
			CargoManifest: "Cargo.toml",
		},
		Hardening: HardeningTargets{
			CXXBinaries: []string{
				"src/zsided",
				"src/zside-cli",
				"src/zside-gtest",
				"src/zside-tx",
				"src/test/test_bitcoin",
			},
			RustBinaries: []string{
				"src/zsided-wallet-tool",
			},
			FallbackPrograms: []string{
				"src/zsided",
				"src/zside-cli",
				"src/zside-tx",
				"src/bench/bench_bitcoin",
			},
			FallbackScripts: []string{
				"src/zsided-wallet-tool",
			},
		},
	}
}

// Binaries returns the hardening targets tagged with their toolchain,
// C++ binaries first
func (h HardeningTargets) Binaries() []Binary {
	bins := make([]Binary, 0, len(h.CXXBinaries)+len(h.RustBinaries))
	for _, p := range h.CXXBinaries {
		bins = append(bins, Binary{Path: p, Toolchain: ToolchainCXX})
	}
	for _, p := range h.RustBinaries {
		bins = append(bins, Binary{Path: p, Toolchain: ToolchainRust})
	}
	return bins
}

// Validate checks that required fields are set
func (c *SuiteConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"depends_dir", c.DependsDir},
		{"source_dir", c.SourceDir},
		{"primary_artifact", c.PrimaryArtifact},
		{"build_project_file", c.BuildProjectFile},
		{"build_tool", c.BuildTool},
		{"security_target", c.SecurityTarget},
		{"analyzer", c.Analyzer},
		{"security_check_script", c.SecurityCheckScript},
		{"interpreter", c.Interpreter},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must not be empty", field.key)
		}
	}

	if c.StageTimeout < 0 {
		return fmt.Errorf("stage_timeout must not be negative, got %v", c.StageTimeout)
	}

	for i, tool := range c.ToolIntegrity.Tools {
		if tool.Path == "" {
			return fmt.Errorf("tool_integrity.tools[%d]: path is required", i)
		}
		if tool.SHA256 == "" && tool.Signature == "" {
			return fmt.Errorf("tool_integrity.tools[%d] (%s): sha256 or signature is required", i, tool.Path)
		}
		if tool.Signature != "" && c.ToolIntegrity.Keyring == "" {
			return fmt.Errorf("tool_integrity.tools[%d] (%s): signature requires tool_integrity.keyring", i, tool.Path)
		}
	}

	return nil
}
