package publisher

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
)

// BuildInvocation carries the resolved publish coordinates handed to a
// package's external build procedure.
type BuildInvocation struct {
	// Bucket is the full destination bucket name.
	Bucket string
	// KeyPrefix is the versioned key prefix.
	KeyPrefix string
	// Region is the target region.
	Region string
	// Version is the solution version string.
	Version string
	// StagingDir is the absolute per-package staging directory the
	// procedure writes its artifacts into.
	StagingDir string
	// ArtifactKey is the resolved content-addressed artifact key, set only
	// for content-addressed packages.
	ArtifactKey string
}

// BuildProcedure runs a package's external build. The procedure is opaque:
// it may stage artifacts for the orchestrator to upload, or upload extra
// artifacts itself using the provided coordinates.
type BuildProcedure interface {
	Build(ctx context.Context, pkg publish.Package, inv BuildInvocation) error
}

// ScriptBuild runs the package's configured build command inside the package
// directory, with the publish coordinates exported in the environment.
type ScriptBuild struct{}

// Build executes the package's build argv and waits for completion. There is
// no timeout and no mid-build cancellation beyond the process context; a
// started build runs to completion or failure.
func (ScriptBuild) Build(ctx context.Context, pkg publish.Package, inv BuildInvocation) error {
	cmd := exec.CommandContext(ctx, pkg.Build[0], pkg.Build[1:]...) //nolint:gosec // Build argv comes from the operator's manifest.
	cmd.Dir = pkg.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		"PUBLISH_BUCKET="+inv.Bucket,
		"PUBLISH_KEY_PREFIX="+inv.KeyPrefix,
		"PUBLISH_REGION="+inv.Region,
		"PUBLISH_VERSION="+inv.Version,
		"PUBLISH_STAGING_DIR="+inv.StagingDir,
		"PUBLISH_ARTIFACT_KEY="+inv.ArtifactKey,
	)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %v: %w", pkg.Build, err)
	}

	return nil
}
