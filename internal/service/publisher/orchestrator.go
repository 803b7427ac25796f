package publisher

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cloudcourier/stack-publisher/internal/checksum"
	"github.com/cloudcourier/stack-publisher/internal/config"
	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
	"github.com/cloudcourier/stack-publisher/internal/logger"
	"github.com/cloudcourier/stack-publisher/internal/storage"
	"github.com/cloudcourier/stack-publisher/internal/template"
	"github.com/cloudcourier/stack-publisher/internal/tracker"
)

// Summary describes a fully successful pipeline run.
type Summary struct {
	// TemplateKey is the object key of the finalized main template.
	TemplateKey string
	// TemplateURL is the HTTPS location of the finalized main template.
	TemplateURL string
	// LaunchURL opens the console's stack-creation page pre-filled with the template.
	LaunchURL string
	// DeployCommand is a copy-pasteable CLI command deploying the template.
	DeployCommand string
	// Published lists packages that were rebuilt and uploaded, in order.
	Published []string
	// Skipped lists packages left untouched because they were unchanged.
	Skipped []string
	// PublicObjects is the number of objects flipped to public-read.
	PublicObjects int
}

// Orchestrator sequences the publish of each package, finalizes the main
// template and optionally makes the release public. Packages are processed
// strictly left to right: later packages and the template substitution
// depend on artifact locations resolved by earlier ones.
type Orchestrator struct {
	cfg       *config.Config
	dest      publish.Destination
	version   string
	stackName string
	public    bool

	tracker   *tracker.Store
	builder   BuildProcedure
	store     storage.ObjectStore
	validator template.Validator

	// statuses tracks the per-package state machine, for logs and tests.
	statuses map[string]publish.Status
	// artifactKeys maps content-addressed package names to resolved keys.
	artifactKeys map[string]string
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	cfg *config.Config,
	dest publish.Destination,
	version, stackName string,
	public bool,
	changeTracker *tracker.Store,
	builder BuildProcedure,
	store storage.ObjectStore,
	validator template.Validator,
) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		dest:         dest,
		version:      version,
		stackName:    stackName,
		public:       public,
		tracker:      changeTracker,
		builder:      builder,
		store:        store,
		validator:    validator,
		statuses:     make(map[string]publish.Status, len(cfg.Packages)),
		artifactKeys: make(map[string]string, len(cfg.Packages)),
	}
}

// Status returns the current state of a package in this run.
func (o *Orchestrator) Status(packageName string) publish.Status {
	return o.statuses[packageName]
}

// ArtifactKey returns the resolved object key of a content-addressed
// package's artifact, or the empty string for other packages.
func (o *Orchestrator) ArtifactKey(packageName string) string {
	return o.artifactKeys[packageName]
}

// Run executes the whole pipeline. The first failed package aborts the run
// without touching its publish record, so a rerun retries it.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if err := o.resetStaging(ctx); err != nil {
		return nil, err
	}

	summary := &Summary{}

	for _, pkg := range o.cfg.Packages {
		if err := o.publishPackage(ctx, pkg, summary); err != nil {
			return nil, err
		}
	}

	if err := o.finalizeTemplate(ctx, summary); err != nil {
		return nil, err
	}

	if o.public {
		if err := o.makePublic(ctx, summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// publishPackage drives one package through the state machine.
func (o *Orchestrator) publishPackage(ctx context.Context, pkg publish.Package, summary *Summary) error {
	ctx = logger.WithKV(ctx, "package", pkg.Name)

	o.setStatus(ctx, pkg, publish.StatusCheckChanged)

	inv := BuildInvocation{
		Bucket:    o.dest.Bucket,
		KeyPrefix: o.dest.Prefix,
		Region:    o.dest.Region,
		Version:   o.version,
	}

	// The content-addressed key is resolved before the skip decision: the
	// template finalizer needs it even when the package itself is skipped,
	// and for unchanged content it resolves to the previously uploaded key.
	if pkg.ContentAddressed {
		hash, err := checksum.ContentHash(pkg.Dir, pkg.ExcludedDirs)
		if err != nil {
			o.setStatus(ctx, pkg, publish.StatusFailed)
			return fmt.Errorf("content hash for %s: %w", pkg.Name, err)
		}

		inv.ArtifactKey = o.dest.ObjectKey(pkg.Name, hash, pkg.Artifact)
		o.artifactKeys[pkg.Name] = inv.ArtifactKey
	}

	changed, err := o.tracker.HasChanged(ctx, pkg, o.dest)
	if err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return err
	}

	if !changed {
		o.setStatus(ctx, pkg, publish.StatusSkipped)
		logger.Info(ctx, "Package unchanged since last publish, skipping")
		o.setStatus(ctx, pkg, publish.StatusDone)

		summary.Skipped = append(summary.Skipped, pkg.Name)

		return nil
	}

	o.setStatus(ctx, pkg, publish.StatusBuilding)

	stagingDir, err := filepath.Abs(filepath.Join(o.cfg.StagingDir, pkg.Name))
	if err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return fmt.Errorf("resolve staging dir for %s: %w", pkg.Name, err)
	}

	if err = os.MkdirAll(stagingDir, 0o755); err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return fmt.Errorf("create staging dir for %s: %w", pkg.Name, err)
	}

	inv.StagingDir = stagingDir

	if err = o.builder.Build(ctx, pkg, inv); err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return &BuildError{Package: pkg.Name, Err: err}
	}

	o.setStatus(ctx, pkg, publish.StatusUploading)

	if err = o.uploadStaged(ctx, pkg, stagingDir); err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return err
	}

	o.setStatus(ctx, pkg, publish.StatusRecordSuccess)

	if err = o.tracker.RecordPublished(ctx, pkg, o.dest); err != nil {
		o.setStatus(ctx, pkg, publish.StatusFailed)
		return err
	}

	o.setStatus(ctx, pkg, publish.StatusDone)
	logger.Info(ctx, "Package published")

	summary.Published = append(summary.Published, pkg.Name)

	return nil
}

// uploadStaged uploads every artifact the build procedure left in the
// package's staging directory. The content-addressed artifact goes to its
// resolved key; everything else lands under the package's key prefix.
func (o *Orchestrator) uploadStaged(ctx context.Context, pkg publish.Package, stagingDir string) error {
	return filepath.WalkDir(stagingDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("enumerate staged artifacts for %s: %w", pkg.Name, err)
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		key := o.dest.ObjectKey(pkg.Name, rel)
		if pkg.ContentAddressed && rel == pkg.Artifact {
			key = o.artifactKeys[pkg.Name]
		}

		body, err := os.ReadFile(path) //nolint:gosec // Path comes from walking our own staging dir.
		if err != nil {
			return fmt.Errorf("read staged artifact %s: %w", rel, err)
		}

		logger.InfoKV(ctx, "Uploading artifact", "key", key)

		if err = o.store.Put(ctx, key, body); err != nil {
			return fmt.Errorf("upload %s for %s: %w", key, pkg.Name, err)
		}

		return nil
	})
}

// finalizeTemplate substitutes resolved locations into the main template,
// uploads it and submits it for validation.
func (o *Orchestrator) finalizeTemplate(ctx context.Context, summary *Summary) error {
	contents, err := os.ReadFile(filepath.Clean(o.cfg.Template))
	if err != nil {
		return fmt.Errorf("read main template: %w", err)
	}

	substitutions := template.Substitutions(o.dest, o.version, o.extensionLocation())
	if substitutions[template.TokenExtensionLocation] == "" {
		// Leave the token in place so the unresolved-token scan reports it
		// instead of silently writing an empty location into the template.
		delete(substitutions, template.TokenExtensionLocation)
	}

	resolved, err := template.Finalize(string(contents), substitutions)
	if err != nil {
		return fmt.Errorf("finalize main template: %w", err)
	}

	key := o.dest.ObjectKey(filepath.Base(o.cfg.Template))

	logger.InfoKV(ctx, "Uploading finalized main template", "key", key)

	if err = o.store.Put(ctx, key, []byte(resolved)); err != nil {
		return fmt.Errorf("upload main template: %w", err)
	}

	templateURL := o.dest.ObjectURL(key)

	if err = o.validator.Validate(ctx, templateURL); err != nil {
		return err
	}

	summary.TemplateKey = key
	summary.TemplateURL = templateURL
	summary.LaunchURL = fmt.Sprintf(
		"https://console.aws.amazon.com/cloudformation/home?region=%s#/stacks/new?stackName=%s&templateURL=%s",
		o.dest.Region, o.stackName, url.QueryEscape(templateURL))
	summary.DeployCommand = fmt.Sprintf(
		"aws cloudformation create-stack --stack-name %s --template-url %s --capabilities CAPABILITY_IAM --region %s",
		o.stackName, templateURL, o.dest.Region)

	return nil
}

// makePublic flips every object under the release prefix to public-read.
func (o *Orchestrator) makePublic(ctx context.Context, summary *Summary) error {
	keys, err := o.store.List(ctx, o.dest.Prefix+"/")
	if err != nil {
		return fmt.Errorf("list release objects: %w", err)
	}

	for _, key := range keys {
		if err = o.store.SetPublicRead(ctx, key); err != nil {
			return fmt.Errorf("set public-read on %s: %w", key, err)
		}
	}

	logger.InfoKV(ctx, "Release objects made public", "count", len(keys))

	summary.PublicObjects = len(keys)

	return nil
}

// resetStaging clears the scratch directory once at the start of the run.
func (o *Orchestrator) resetStaging(ctx context.Context) error {
	logger.InfoKV(ctx, "Clearing staging directory", "path", o.cfg.StagingDir)

	if err := os.RemoveAll(o.cfg.StagingDir); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}

	if err := os.MkdirAll(o.cfg.StagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	return nil
}

// setStatus records and logs a package state transition.
func (o *Orchestrator) setStatus(ctx context.Context, pkg publish.Package, status publish.Status) {
	o.statuses[pkg.Name] = status

	logger.DebugKV(ctx, "Package status changed", "status", status.String())
}

// extensionLocation returns the fully qualified URL of the first
// content-addressed package's artifact, or the empty string when the
// manifest configures none.
func (o *Orchestrator) extensionLocation() string {
	for _, pkg := range o.cfg.Packages {
		if pkg.ContentAddressed {
			if key, ok := o.artifactKeys[pkg.Name]; ok {
				return o.dest.ObjectURL(key)
			}
		}
	}

	return ""
}
