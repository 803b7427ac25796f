package publish

// Package is one independently publishable subtree of the solution.
// Packages are checksummed and skipped independently of each other.
type Package struct {
	// Name identifies the package in logs, statuses and object keys.
	Name string `yaml:"name"`
	// Dir is the package directory relative to the manifest location.
	Dir string `yaml:"dir"`
	// Build is the argv of the external build procedure, run inside Dir.
	Build []string `yaml:"build"`
	// ExcludedDirs lists transient directory names (build output,
	// dependency installs) pruned recursively from all checksums.
	ExcludedDirs []string `yaml:"exclude,omitempty"`
	// Artifact is the staged artifact file name for content-addressed packages.
	Artifact string `yaml:"artifact,omitempty"`
	// ContentAddressed marks packages whose artifact key embeds the
	// content hash of the package sources, so downstream custom resources
	// see a new key exactly when the content changed.
	ContentAddressed bool `yaml:"content_addressed,omitempty"`
}
