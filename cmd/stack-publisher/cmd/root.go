package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudcourier/stack-publisher/internal/config"
	"github.com/cloudcourier/stack-publisher/internal/logger"
	"github.com/cloudcourier/stack-publisher/internal/service/publisher"
	"github.com/cloudcourier/stack-publisher/internal/version"
)

var (
	// configPath to the publish manifest YAML file.
	configPath string

	// solutionVersion overrides the solution version embedded in key prefixes.
	solutionVersion string

	// public makes every published object publicly readable.
	public bool

	// logLevel sets the minimum level for log output.
	logLevel string

	// rootCmd represents the base command for publishing a solution release.
	rootCmd = &cobra.Command{
		Use:   "stack-publisher [bucket-base-name] [prefix] [region]",
		Short: "Incrementally publish solution artifacts and the finalized main template",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &publisher.Options{
				ConfigPath:      configPath,
				BucketBaseName:  args[0],
				Prefix:          args[1],
				Region:          args[2],
				SolutionVersion: solutionVersion,
				Public:          public,
			}

			return publisher.Run(ctx, options)
		},
	}
)

// Execute runs the stack-publisher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to publish manifest")
	rootCmd.Flags().StringVarP(&solutionVersion, "solution-version", "s", "", "solution version (defaults to the build version)")
	rootCmd.Flags().BoolVar(&public, "public", false, "make published objects publicly readable")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
}
