package yaml

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// SuiteConfigRepository implements repositories.SuiteConfigRepository using a YAML file
type SuiteConfigRepository struct {
	parser *SuiteConfigParser
}

// NewSuiteConfigRepository creates a new YAML-based configuration repository
func NewSuiteConfigRepository() *SuiteConfigRepository {
	return &SuiteConfigRepository{parser: NewSuiteConfigParser()}
}

// LoadSuiteConfig loads the configuration at path. A missing file yields the defaults.
func (r *SuiteConfigRepository) LoadSuiteConfig(path string) (*entities.SuiteConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return entities.DefaultSuiteConfig(), nil
	}
	return r.parser.ParseFile(path)
}
