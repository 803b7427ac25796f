package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudcourier/stack-publisher/internal/checksum"
	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
	"github.com/cloudcourier/stack-publisher/internal/logger"
	"github.com/cloudcourier/stack-publisher/internal/repository/record"
)

// Store decides whether a package needs republishing and records successful
// publishes. Destination coordinates are passed explicitly on every call;
// there is no ambient destination state.
type Store struct {
	// repo persists per-package records.
	repo record.Repository
	// version is the solution version stamped into new records.
	version string
}

// NewStore creates a change-tracking store on top of a record repository.
func NewStore(repo record.Repository, version string) *Store {
	return &Store{
		repo:    repo,
		version: version,
	}
}

// HasChanged reports whether the package differs from its last successful
// publish to the given destination. A package with no record is always
// considered changed. A signature computation failure (missing or unreadable
// package directory) is an error, never a silent "unchanged".
func (s *Store) HasChanged(ctx context.Context, pkg publish.Package, dest publish.Destination) (bool, error) {
	signature, err := checksum.ChangeSignature(pkg.Dir, pkg.ExcludedDirs, dest)
	if err != nil {
		return false, fmt.Errorf("change signature for %s: %w", pkg.Name, err)
	}

	rec, err := s.repo.Load(ctx, pkg.Dir)
	if errors.Is(err, record.ErrNotFound) {
		logger.DebugKV(ctx, "No publish record found, package considered changed", "package", pkg.Name)
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("load publish record for %s: %w", pkg.Name, err)
	}

	return rec.Signature != signature, nil
}

// RecordPublished recomputes the change signature and overwrites the
// package's record. Callers must invoke it only after the package's publish
// procedure completed without error, so a failed publish stays retriable.
func (s *Store) RecordPublished(ctx context.Context, pkg publish.Package, dest publish.Destination) error {
	signature, err := checksum.ChangeSignature(pkg.Dir, pkg.ExcludedDirs, dest)
	if err != nil {
		return fmt.Errorf("change signature for %s: %w", pkg.Name, err)
	}

	rec := &record.Record{
		Signature:   signature,
		Version:     s.version,
		PublishedAt: time.Now().UTC(),
	}

	if err = s.repo.Save(ctx, pkg.Dir, rec); err != nil {
		return fmt.Errorf("record publish of %s: %w", pkg.Name, err)
	}

	return nil
}
