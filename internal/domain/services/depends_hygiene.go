package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/services"
)

const sharedLibraryMarker = ".so"

// dependsHygieneService verifies that no shared libraries leaked into depends/
type dependsHygieneService struct {
	repoRoot string
	config   *entities.SuiteConfig
	locator  gateways.ArtifactLocator
	reporter interfaces.Reporter
	logger   interfaces.Logger
}

// NewDependsHygieneService creates the depends/ hygiene check
func NewDependsHygieneService(
	repoRoot string,
	config *entities.SuiteConfig,
	locator gateways.ArtifactLocator,
	reporter interfaces.Reporter,
	logger interfaces.Logger,
) services.DependsHygieneService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &dependsHygieneService{
		repoRoot: repoRoot,
		config:   config,
		locator:  locator,
		reporter: reporter,
		logger:   logger,
	}
}

// EnsureNoSharedLibraries fails if any file in <arch>/lib looks like a shared library.
// Every offending name is printed.
func (s *dependsHygieneService) EnsureNoSharedLibraries(_ context.Context) (bool, error) {
	archDir, ok := locateArchDir(s.locator, resolvePath(s.repoRoot, s.config.DependsDir), s.reporter, s.logger)
	if !ok {
		return false, nil
	}

	passed := true
	if s.locator.IsDirectory(archDir) {
		libDir := filepath.Join(archDir, "lib")
		libraries, err := s.locator.ListLibraries(libDir)
		if err != nil {
			s.reporter.Printf("%v", err)
			passed = false
		}
		for _, lib := range libraries {
			if strings.Contains(lib, sharedLibraryMarker) {
				s.reporter.Printf("%s", lib)
				passed = false
			}
		}
	} else {
		passed = false
		s.reporter.Printf("arch-specific build dir not present")
		s.reporter.Printf("Did you build the ./depends tree?")
		s.reporter.Printf("Are you on a currently unsupported architecture?")
	}

	if passed {
		s.reporter.Printf("PASS.")
	} else {
		s.reporter.Printf("FAIL.")
	}
	return passed, nil
}

// locateArchDir resolves the architecture directory, reporting the diagnostic
// when there is none
func locateArchDir(
	locator gateways.ArtifactLocator,
	dependsDir string,
	reporter interfaces.Reporter,
	logger interfaces.Logger,
) (string, bool) {
	archDir, err := locator.FindArchDir(dependsDir)
	if err != nil {
		reporter.Printf("!!! %v !!!", err)
		if !errors.Is(err, entities.ErrArchDirNotFound) {
			logger.Error("architecture directory lookup failed",
				interfaces.F("depends_dir", dependsDir),
				interfaces.F("error", err))
		}
		return "", false
	}
	logger.Debug("architecture directory", interfaces.F("path", archDir))
	return archDir, true
}
