package publisher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudcourier/stack-publisher/internal/config"
	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
	"github.com/cloudcourier/stack-publisher/internal/logger"
	"github.com/cloudcourier/stack-publisher/internal/repository/record"
	"github.com/cloudcourier/stack-publisher/internal/storage"
	"github.com/cloudcourier/stack-publisher/internal/template"
	"github.com/cloudcourier/stack-publisher/internal/tracker"
	"github.com/cloudcourier/stack-publisher/internal/version"
)

// Options contains inputs for the publisher entry point.
type Options struct {
	// ConfigPath is the path to the publish manifest (defaults to stack-publisher.yaml).
	ConfigPath string
	// BucketBaseName is the destination bucket base name; the region is appended.
	BucketBaseName string
	// Prefix is the solution key prefix; the solution version is appended.
	Prefix string
	// Region is the target region.
	Region string
	// SolutionVersion overrides the solution version (defaults to the build's own version).
	SolutionVersion string
	// Public makes every object under the release prefix publicly readable.
	Public bool
}

// Run executes the publishing pipeline end to end.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "stack-publisher")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	release, err := acquireRunMarker(ctx)
	if err != nil {
		return err
	}

	// Best-effort cleanup.
	defer release()

	if err = preflight(ctx, cfg); err != nil {
		return err
	}

	solutionVersion := opts.SolutionVersion
	if solutionVersion == "" {
		solutionVersion = version.Short()
	}

	dest := publish.NewDestination(opts.BucketBaseName, opts.Prefix, solutionVersion, opts.Region)

	logger.InfoKV(ctx, "Publishing release",
		"bucket", dest.Bucket,
		"prefix", dest.Prefix,
		"region", dest.Region,
		"public", opts.Public)

	orchestrator := NewOrchestrator(
		cfg,
		dest,
		solutionVersion,
		opts.Prefix,
		opts.Public,
		tracker.NewStore(record.NewFileRepository(), solutionVersion),
		ScriptBuild{},
		storage.NewS3CLI(dest.Bucket, dest.Region),
		template.NewCLIValidator(dest.Region),
	)

	summary, err := orchestrator.Run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Publish run failed", "error", err)
		return err
	}

	logger.InfoKV(ctx, "Publish run completed",
		"published", strings.Join(summary.Published, ", "),
		"skipped", strings.Join(summary.Skipped, ", "))

	printSummary(summary)

	return nil
}

// printSummary writes the machine-usable run outputs to stdout;
// logs go to stderr, so this stays pipeable.
func printSummary(summary *Summary) {
	var builder strings.Builder

	builder.WriteString("Template URL:   ")
	builder.WriteString(summary.TemplateURL)
	builder.WriteString("\nLaunch URL:     ")
	builder.WriteString(summary.LaunchURL)
	builder.WriteString("\nDeploy command: ")
	builder.WriteString(summary.DeployCommand)
	builder.WriteString("\n")

	_, _ = fmt.Fprint(os.Stdout, builder.String())
}
