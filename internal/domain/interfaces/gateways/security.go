// Package gateways defines the contracts for external tools and the filesystem.
package gateways

import (
	"context"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// CommandRunner runs external processes to completion
type CommandRunner interface {
	RunCommand(ctx context.Context, spec entities.CommandSpec) *entities.CommandResult
}

// SecurityAnalyzer captures the output of the external binary-security analyzer.
// It performs no parsing.
type SecurityAnalyzer interface {
	// RPathRunPathReport returns the full analyzer output for the RPATH/RUNPATH query
	RPathRunPathReport(ctx context.Context, binaryPath string) (string, error)

	// FortifyReport returns the first two lines of the FORTIFY_SOURCE query.
	// Lines not produced by the analyzer are returned as empty strings.
	FortifyReport(ctx context.Context, binaryPath string) ([2]string, error)
}

// BinaryInspector classifies binaries by their header
type BinaryInspector interface {
	IsELF(path string) (bool, error)
}

// ArtifactLocator finds architecture-specific dependency trees
type ArtifactLocator interface {
	// FindArchDir returns the architecture directory under dependsDir or an error
	// wrapping ErrArchDirNotFound
	FindArchDir(dependsDir string) (string, error)

	// ListLibraries returns the file names in libDir
	ListLibraries(libDir string) ([]string, error)

	// IsDirectory reports whether path exists and is a directory
	IsDirectory(path string) bool
}

// ToolVerifier checks the integrity of an external tool before it is trusted
type ToolVerifier interface {
	VerifyTool(ctx context.Context, pin entities.ToolPin) error
}
