package gateways

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// Architecture directory names searched under depends/, in priority order
const (
	linuxArchDir      = "x86_64-pc-linux-gnu"
	darwinArchPattern = "x86_64-apple-darwin*"
	mingwArchPattern  = "x86_64-w64-mingw32*"
)

// ArtifactFinder provides utilities for locating prebuilt dependency trees
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindArchDir returns the architecture directory under dependsDir.
// Linux is matched exactly, then the first macOS match, then the first Windows match.
// There is only ever one of each in CI, so which glob match wins does not matter.
func (f *ArtifactFinder) FindArchDir(dependsDir string) (string, error) {
	linuxDir := filepath.Join(dependsDir, linuxArchDir)
	if isDirectory(linuxDir) {
		return linuxDir, nil
	}

	for _, pattern := range []string{darwinArchPattern, mingwArchPattern} {
		matches, err := filepath.Glob(filepath.Join(dependsDir, pattern))
		if err != nil {
			return "", fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}

	return "", entities.ErrArchDirNotFound
}

// ListLibraries returns the names of the entries in libDir
func (f *ArtifactFinder) ListLibraries(libDir string) ([]string, error) {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", libDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// IsDirectory reports whether path exists and is a directory
func (f *ArtifactFinder) IsDirectory(path string) bool {
	return isDirectory(path)
}

// isDirectory checks if a path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
