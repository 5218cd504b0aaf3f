// Package yaml provides YAML-based suite configuration loading.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// yamlSuiteConfig represents the raw YAML structure
type yamlSuiteConfig struct {
	DependsDir          string            `yaml:"depends_dir"`
	SourceDir           string            `yaml:"source_dir"`
	PrimaryArtifact     string            `yaml:"primary_artifact"`
	BuildProjectFile    string            `yaml:"build_project_file"`
	BuildTool           string            `yaml:"build_tool"`
	SecurityTarget      string            `yaml:"security_target"`
	Analyzer            string            `yaml:"analyzer"`
	SecurityCheckScript string            `yaml:"security_check_script"`
	Interpreter         string            `yaml:"interpreter"`
	LogLevel            string            `yaml:"log_level"`
	StageTimeout        string            `yaml:"stage_timeout"`
	LockFile            string            `yaml:"lock_file"`
	Tests               yamlTests         `yaml:"tests"`
	Hardening           yamlHardening     `yaml:"hardening"`
	ToolIntegrity       yamlToolIntegrity `yaml:"tool_integrity"`
}

type yamlTests struct {
	BTest         string `yaml:"btest"`
	GTest         string `yaml:"gtest"`
	RPC           string `yaml:"rpc"`
	UtilTest      string `yaml:"util_test"`
	CargoManifest string `yaml:"cargo_manifest"`
}

// Lists are pointers so an explicit empty list can clear a default
type yamlHardening struct {
	CXXBinaries      *[]string `yaml:"cxx_binaries"`
	RustBinaries     *[]string `yaml:"rust_binaries"`
	FallbackPrograms *[]string `yaml:"fallback_programs"`
	FallbackScripts  *[]string `yaml:"fallback_scripts"`
}

type yamlToolIntegrity struct {
	Keyring string        `yaml:"keyring"`
	Tools   []yamlToolPin `yaml:"tools"`
}

type yamlToolPin struct {
	Path      string `yaml:"path"`
	SHA256    string `yaml:"sha256"`
	Signature string `yaml:"signature"`
}

// SuiteConfigParser parses YAML suite configuration files
type SuiteConfigParser struct{}

// NewSuiteConfigParser creates a new YAML parser
func NewSuiteConfigParser() *SuiteConfigParser {
	return &SuiteConfigParser{}
}

// ParseFile parses a YAML configuration file
func (p *SuiteConfigParser) ParseFile(filePath string) (*entities.SuiteConfig, error) {
	//nolint:gosec // G304: filePath is the user-selected configuration file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	cfg, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes and merges the values set over DefaultSuiteConfig.
// Unknown keys are rejected.
func (p *SuiteConfigParser) Parse(data []byte) (*entities.SuiteConfig, error) {
	var raw yamlSuiteConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := entities.DefaultSuiteConfig()
	if err := merge(cfg, &raw); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func merge(cfg *entities.SuiteConfig, raw *yamlSuiteConfig) error {
	setString(&cfg.DependsDir, raw.DependsDir)
	setString(&cfg.SourceDir, raw.SourceDir)
	setString(&cfg.PrimaryArtifact, raw.PrimaryArtifact)
	setString(&cfg.BuildProjectFile, raw.BuildProjectFile)
	setString(&cfg.BuildTool, raw.BuildTool)
	setString(&cfg.SecurityTarget, raw.SecurityTarget)
	setString(&cfg.Analyzer, raw.Analyzer)
	setString(&cfg.SecurityCheckScript, raw.SecurityCheckScript)
	setString(&cfg.Interpreter, raw.Interpreter)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.LockFile, raw.LockFile)

	if raw.StageTimeout != "" {
		timeout, err := time.ParseDuration(raw.StageTimeout)
		if err != nil {
			return fmt.Errorf("invalid stage_timeout %q: %w", raw.StageTimeout, err)
		}
		cfg.StageTimeout = timeout
	}

	setString(&cfg.Tests.BTest, raw.Tests.BTest)
	setString(&cfg.Tests.GTest, raw.Tests.GTest)
	setString(&cfg.Tests.RPC, raw.Tests.RPC)
	setString(&cfg.Tests.UtilTest, raw.Tests.UtilTest)
	setString(&cfg.Tests.CargoManifest, raw.Tests.CargoManifest)

	setList(&cfg.Hardening.CXXBinaries, raw.Hardening.CXXBinaries)
	setList(&cfg.Hardening.RustBinaries, raw.Hardening.RustBinaries)
	setList(&cfg.Hardening.FallbackPrograms, raw.Hardening.FallbackPrograms)
	setList(&cfg.Hardening.FallbackScripts, raw.Hardening.FallbackScripts)

	cfg.ToolIntegrity.Keyring = raw.ToolIntegrity.Keyring
	for _, pin := range raw.ToolIntegrity.Tools {
		cfg.ToolIntegrity.Tools = append(cfg.ToolIntegrity.Tools, entities.ToolPin{
			Path:      pin.Path,
			SHA256:    pin.SHA256,
			Signature: pin.Signature,
		})
	}
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setList(dst *[]string, value *[]string) {
	if value != nil {
		*dst = append([]string{}, (*value)...)
	}
}
