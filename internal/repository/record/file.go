package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
)

// Record is the persisted outcome of the last successful publish of a package.
type Record struct {
	// Signature is the change signature computed right after the publish.
	Signature string `yaml:"signature"`
	// Version is the solution version the package was published under.
	Version string `yaml:"version"`
	// PublishedAt is when the record was written.
	PublishedAt time.Time `yaml:"published_at"`
}

// Repository defines persistence operations for per-package publish records.
type Repository interface {
	Load(ctx context.Context, packageDir string) (*Record, error)
	Save(ctx context.Context, packageDir string, rec *Record) error
}

// FileRepository persists publish records as YAML files adjacent to the
// package sources (publish.RecordFilename inside the package directory).
type FileRepository struct {
	// mu protects concurrent access to record files.
	mu sync.Mutex
}

// ErrNotFound is returned when a package has never been published.
var ErrNotFound = errors.New("publish record not found")

// recordFileMode keeps records private; they are local bookkeeping only.
const recordFileMode os.FileMode = 0o600

// NewFileRepository creates a repository storing one record file per package directory.
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads the record for a package from disk.
func (r *FileRepository) Load(_ context.Context, packageDir string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(recordPath(packageDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read publish record: %w", err)
	}

	var rec Record
	if err = yaml.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode publish record: %w", err)
	}

	return &rec, nil
}

// Save writes the record for a package, overwriting any prior one.
func (r *FileRepository) Save(_ context.Context, packageDir string, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode publish record: %w", err)
	}

	if err = os.WriteFile(recordPath(packageDir), contents, recordFileMode); err != nil {
		return fmt.Errorf("write publish record: %w", err)
	}

	return nil
}

// recordPath returns the record file location for a package directory.
func recordPath(packageDir string) string {
	return filepath.Clean(filepath.Join(packageDir, publish.RecordFilename))
}
