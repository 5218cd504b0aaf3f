// Package repositories defines data access contracts.
package repositories

import "github.com/ochairo/stagerunner/internal/domain/entities"

// SuiteConfigRepository loads the suite configuration
type SuiteConfigRepository interface {
	// LoadSuiteConfig returns the configuration at path merged over the defaults.
	// A missing file yields the defaults.
	LoadSuiteConfig(path string) (*entities.SuiteConfig, error)
}
