package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
)

// validConfig returns a minimal manifest that passes validation.
func validConfig() *Config {
	return &Config{
		Template: "deployment/main.template",
		Packages: []publish.Package{
			{
				Name:  "custom-resources",
				Dir:   "functions/custom-resources",
				Build: []string{"./build.sh"},
			},
		},
	}
}

// TestValidate checks required fields and per-package consistency rules.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing template.
	err := Validate(&Config{})
	require.Error(t, err)

	// No packages.
	err = Validate(&Config{Template: "main.template"})
	require.Error(t, err)

	// Package without build command.
	cfg := validConfig()
	cfg.Packages[0].Build = nil
	err = Validate(cfg)
	require.Error(t, err)

	// Duplicate package names.
	cfg = validConfig()
	cfg.Packages = append(cfg.Packages, cfg.Packages[0])
	err = Validate(cfg)
	require.Error(t, err)

	// Content-addressed package without an artifact name.
	cfg = validConfig()
	cfg.Packages[0].ContentAddressed = true
	err = Validate(cfg)
	require.Error(t, err)

	// Okay, and the staging dir default is filled in.
	cfg = validConfig()
	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultStagingDir, cfg.StagingDir)
}

// TestSaveLoadRoundtrip ensures the manifest is persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "stack-publisher.yaml")

	cfg := validConfig()
	cfg.Packages[0].ExcludedDirs = []string{"node_modules", "dist"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Template, loaded.Template)
	require.Equal(t, cfg.Packages, loaded.Packages)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingFile ensures a descriptive error for an absent manifest.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
