package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
)

// Config is the publish manifest: the main template, the staging area and
// the ordered list of publishable packages. Package order matters, the main
// template substitution depends on artifact locations resolved by earlier
// packages, so the orchestrator never reorders or parallelizes them.
type Config struct {
	// Template is the path to the main template containing substitution tokens.
	Template string `yaml:"template"`
	// StagingDir is the scratch directory cleared at start and used to
	// stage artifacts before upload.
	StagingDir string `yaml:"staging_dir"`
	// Packages is the ordered list of publishable packages.
	Packages []publish.Package `yaml:"packages"`
}

const (
	// DefaultConfigFilename is the default publish manifest location.
	DefaultConfigFilename = "stack-publisher.yaml"

	// DefaultStagingDir is used when the manifest does not name one.
	DefaultStagingDir = "build/staging"

	// DefaultFilePermissions is the default file permission for manifest files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errTemplateRequired is returned when the main template path is missing.
	errTemplateRequired = errors.New("main template path must be provided")
	// errNoPackages is returned when the manifest lists no packages.
	errNoPackages = errors.New("at least one package must be configured")
)

// Load reads the publish manifest from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the publish manifest to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Validate checks the manifest for required fields and per-package consistency.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Template == "" {
		return errTemplateRequired
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}

	if len(cfg.Packages) == 0 {
		return errNoPackages
	}

	seen := make(map[string]struct{}, len(cfg.Packages))

	for i, pkg := range cfg.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("package %d: name must be provided", i)
		}

		if _, ok := seen[pkg.Name]; ok {
			return fmt.Errorf("package %s: duplicate name", pkg.Name)
		}

		seen[pkg.Name] = struct{}{}

		if pkg.Dir == "" {
			return fmt.Errorf("package %s: dir must be provided", pkg.Name)
		}

		if len(pkg.Build) == 0 {
			return fmt.Errorf("package %s: build command must be provided", pkg.Name)
		}

		if pkg.ContentAddressed && pkg.Artifact == "" {
			return fmt.Errorf("package %s: content-addressed packages need an artifact name", pkg.Name)
		}
	}

	return nil
}
