package orchestrators

import (
	"path/filepath"
	"slices"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/services"
)

// Stage names in catalogue order
const (
	StageRustTest  = "rust-test"
	StageBTest     = "btest"
	StageGTest     = "gtest"
	StageSecHard   = "sec-hard"
	StageNoDotSo   = "no-dot-so"
	StageUtilTest  = "util-test"
	StageSecp256k1 = "secp256k1"
	StageUnivalue  = "univalue"
	StageRPC       = "rpc"
)

var stageDescriptions = []struct {
	name        string
	description string
}{
	{StageRustTest, "run the Rust test suite with the depends/ toolchain"},
	{StageBTest, "run the Boost unit test binary in parallel"},
	{StageGTest, "run the GoogleTest binary"},
	{StageSecHard, "audit binary hardening (NX, PIE, RELRO, canary, RPATH/RUNPATH, FORTIFY_SOURCE)"},
	{StageNoDotSo, "check that no shared libraries leaked into depends/"},
	{StageUtilTest, "run the utility self-test script"},
	{StageSecp256k1, "run the embedded secp256k1 checks"},
	{StageUnivalue, "run the embedded univalue checks"},
	{StageRPC, "run the RPC integration tests"},
}

// StageNames returns the catalogue names without building any stage.
// Listing uses it so no configuration is needed.
func StageNames() []string {
	names := make([]string, len(stageDescriptions))
	for i, d := range stageDescriptions {
		names[i] = d.name
	}
	return names
}

// ValidateStageNames checks names against the catalogue before any
// configuration is loaded, so a bad stage name is always a usage error
func ValidateStageNames(names []string) error {
	known := StageNames()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return &InvalidStageError{Name: name, Valid: known}
		}
	}
	return nil
}

// StageDescriptions returns name/description pairs in catalogue order
func StageDescriptions() [][2]string {
	pairs := make([][2]string, len(stageDescriptions))
	for i, d := range stageDescriptions {
		pairs[i] = [2]string{d.name, d.description}
	}
	return pairs
}

// CatalogueServices are the in-process checks behind the catalogue
type CatalogueServices struct {
	Audit     services.SecurityAuditService
	Hygiene   services.DependsHygieneService
	Toolchain services.ToolchainTestService
}

// NewDefaultCatalogue builds the standard stages for the tree at repoRoot
func NewDefaultCatalogue(repoRoot string, cfg *entities.SuiteConfig, svc CatalogueServices) []entities.Stage {
	path := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(repoRoot, p)
	}
	srcDir := path(cfg.SourceDir)

	actions := map[string]entities.Action{
		StageRustTest:  entities.CheckAction(svc.Toolchain.RustTest),
		StageBTest:     entities.ShellAction(path(cfg.Tests.BTest), "-p"),
		StageGTest:     entities.ShellAction(path(cfg.Tests.GTest)),
		StageSecHard:   entities.CheckAction(svc.Audit.CheckSecurityHardening),
		StageNoDotSo:   entities.CheckAction(svc.Hygiene.EnsureNoSharedLibraries),
		StageUtilTest:  entities.CheckAction(svc.Toolchain.UtilTest),
		StageSecp256k1: entities.ShellAction(cfg.BuildTool, "-C", filepath.Join(srcDir, "secp256k1"), "check"),
		StageUnivalue:  entities.ShellAction(cfg.BuildTool, "-C", filepath.Join(srcDir, "univalue"), "check"),
		StageRPC:       entities.ShellAction(path(cfg.Tests.RPC)),
	}

	stages := make([]entities.Stage, 0, len(stageDescriptions))
	for _, d := range stageDescriptions {
		stages = append(stages, entities.Stage{
			Name:        d.name,
			Description: d.description,
			Action:      actions[d.name],
		})
	}
	return stages
}
