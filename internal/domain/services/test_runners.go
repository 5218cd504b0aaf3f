package services

import (
	"context"
	"path/filepath"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/services"
)

// toolchainTestService runs test suites that need environment overrides
type toolchainTestService struct {
	repoRoot string
	config   *entities.SuiteConfig
	locator  gateways.ArtifactLocator
	runner   gateways.CommandRunner
	reporter interfaces.Reporter
	logger   interfaces.Logger
}

// NewToolchainTestService creates the rust-test and util-test runners
func NewToolchainTestService(
	repoRoot string,
	config *entities.SuiteConfig,
	locator gateways.ArtifactLocator,
	runner gateways.CommandRunner,
	reporter interfaces.Reporter,
	logger interfaces.Logger,
) services.ToolchainTestService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &toolchainTestService{
		repoRoot: repoRoot,
		config:   config,
		locator:  locator,
		runner:   runner,
		reporter: reporter,
		logger:   logger,
	}
}

// RustTest runs "cargo test" with the cargo and rustc built into depends/
func (s *toolchainTestService) RustTest(ctx context.Context) (bool, error) {
	archDir, ok := locateArchDir(s.locator, resolvePath(s.repoRoot, s.config.DependsDir), s.reporter, s.logger)
	if !ok {
		return false, nil
	}

	nativeBin := filepath.Join(archDir, "native", "bin")
	result := s.runner.RunCommand(ctx, entities.CommandSpec{
		Name: filepath.Join(nativeBin, "cargo"),
		Args: []string{
			"test",
			"--manifest-path",
			resolvePath(s.repoRoot, s.config.Tests.CargoManifest),
		},
		Env: map[string]string{
			"RUSTC": filepath.Join(nativeBin, "rustc"),
		},
		Description: "cargo test",
	})
	return result.Success, nil
}

// UtilTest runs the utility self-test script under the configured interpreter
// from inside the source directory
func (s *toolchainTestService) UtilTest(ctx context.Context) (bool, error) {
	script := resolvePath(s.repoRoot, s.config.Tests.UtilTest)
	srcDir := resolvePath(s.repoRoot, s.config.SourceDir)

	result := s.runner.RunCommand(ctx, entities.CommandSpec{
		Name: s.config.Interpreter,
		Args: []string{script},
		Dir:  srcDir,
		Env: map[string]string{
			"PYTHONPATH": filepath.Dir(script),
			"srcdir":     srcDir,
		},
		Description: "util test",
	})
	return result.Success, nil
}
