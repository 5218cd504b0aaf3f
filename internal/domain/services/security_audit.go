package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/services"
)

// SecurityAuditDeps wires the security audit to its gateways
type SecurityAuditDeps struct {
	RepoRoot  string
	Config    *entities.SuiteConfig
	Runner    gateways.CommandRunner
	Inspector gateways.BinaryInspector
	Verifier  *HardeningVerifier
	Tools     gateways.ToolVerifier // nil disables tool integrity checks
	Reporter  interfaces.Reporter
	Logger    interfaces.Logger
}

// securityAuditService implements SecurityAuditService
type securityAuditService struct {
	deps SecurityAuditDeps
}

// NewSecurityAuditService creates the security audit
func NewSecurityAuditService(deps SecurityAuditDeps) services.SecurityAuditService {
	if deps.Logger == nil {
		deps.Logger = &interfaces.NoOpLogger{}
	}
	return &securityAuditService{deps: deps}
}

// CheckSecurityHardening runs the NX/PIE/RELRO/canary audit through the build
// system or the fallback script, then the ELF-only RPATH/RUNPATH and
// FORTIFY_SOURCE checks. Every verdict is AND-ed together.
func (s *securityAuditService) CheckSecurityHardening(ctx context.Context) (bool, error) {
	cfg := s.deps.Config

	if !s.verifyTools(ctx) {
		return false, nil
	}

	verdicts := make([]bool, 0)

	projectFile := s.path(cfg.BuildProjectFile)
	if isFile(projectFile) {
		verdicts = append(verdicts, s.checkSecurityTarget(ctx, filepath.Dir(projectFile)))
	} else {
		verdicts = append(verdicts, s.checkWithScript(ctx)...)
	}

	// The remaining checks are only for ELF binaries. If the primary artifact
	// is ELF, all of them are assumed to be.
	primary := s.path(cfg.PrimaryArtifact)
	isELF, err := s.deps.Inspector.IsELF(primary)
	if err != nil {
		return false, fmt.Errorf("cannot inspect primary artifact %s: %w", cfg.PrimaryArtifact, err)
	}
	if !isELF {
		s.deps.Logger.Info("primary artifact is not ELF, skipping RPATH/RUNPATH and FORTIFY_SOURCE checks",
			interfaces.F("artifact", cfg.PrimaryArtifact))
		return allTrue(verdicts), nil
	}

	binaries := cfg.Hardening.Binaries()
	for _, bin := range binaries {
		verdicts = append(verdicts, s.deps.Verifier.CheckRPathRunPath(ctx, bin))
	}

	// checksec.sh does not reliably determine whether FORTIFY_SOURCE is enabled
	// for the entire binary; a Yes only means some fortified call was found.
	for _, bin := range binaries {
		if bin.FortifyApplicable() {
			verdicts = append(verdicts, s.deps.Verifier.CheckFortifySource(ctx, bin))
		}
	}

	return allTrue(verdicts), nil
}

// checkSecurityTarget delegates to the build system's security target
func (s *securityAuditService) checkSecurityTarget(ctx context.Context, projectDir string) bool {
	cfg := s.deps.Config
	result := s.deps.Runner.RunCommand(ctx, entities.CommandSpec{
		Name:        cfg.BuildTool,
		Args:        []string{"-C", projectDir, cfg.SecurityTarget},
		Description: cfg.BuildTool + " " + cfg.SecurityTarget,
	})
	return result.Success
}

// checkWithScript runs the security-check script against each binary when
// there is no build system (packaged layouts)
func (s *securityAuditService) checkWithScript(ctx context.Context) []bool {
	cfg := s.deps.Config
	programs := cfg.Hardening.FallbackPrograms
	scripts := cfg.Hardening.FallbackScripts

	all := make([]string, 0, len(programs)+len(scripts))
	all = append(all, programs...)
	all = append(all, scripts...)
	s.deps.Reporter.Printf("Checking binary security of %s...", quotedList(all))

	script := s.path(cfg.SecurityCheckScript)
	verdicts := make([]bool, 0, len(all))

	for _, program := range programs {
		result := s.deps.Runner.RunCommand(ctx, entities.CommandSpec{
			Name:        script,
			Args:        []string{s.path(program)},
			Description: "security-check " + program,
		})
		verdicts = append(verdicts, result.Success)
	}

	// Script-built artifacts have no stack canary to find
	for _, target := range scripts {
		result := s.deps.Runner.RunCommand(ctx, entities.CommandSpec{
			Name:        script,
			Args:        []string{"--allow-no-canary", s.path(target)},
			Description: "security-check " + target,
		})
		verdicts = append(verdicts, result.Success)
	}

	return verdicts
}

// verifyTools checks the pinned audit tools. Untrusted tools are never run.
func (s *securityAuditService) verifyTools(ctx context.Context) bool {
	integrity := s.deps.Config.ToolIntegrity
	if s.deps.Tools == nil || !integrity.Enabled() {
		return true
	}

	trusted := true
	for _, pin := range integrity.Tools {
		if err := s.deps.Tools.VerifyTool(ctx, pin); err != nil {
			s.deps.Reporter.Fail("%s failed integrity verification: %v", pin.Path, err)
			trusted = false
			continue
		}
		s.deps.Logger.Debug("tool verified", interfaces.F("tool", pin.Path))
	}
	return trusted
}

func (s *securityAuditService) path(p string) string {
	return resolvePath(s.deps.RepoRoot, p)
}
