// Package version exposes build metadata injected via ldflags and a cobra
// subcommand for printing it. The short version doubles as the default
// solution version embedded in published artifact key prefixes.
package version
