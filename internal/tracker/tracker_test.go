package tracker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
	"github.com/cloudcourier/stack-publisher/internal/repository/record"
)

// newTestPackage creates a package directory with a single source file.
func newTestPackage(t *testing.T) publish.Package {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("exports.handler = () => {}\n"), 0o644))

	return publish.Package{
		Name: "custom-resources",
		Dir:  dir,
	}
}

func testDestination() publish.Destination {
	return publish.NewDestination("solutions", "webchat", "v2.1.0", "eu-west-1")
}

// TestStore_HasChanged_FirstRun ensures a package without a record is always changed.
func TestStore_HasChanged_FirstRun(t *testing.T) {
	t.Parallel()

	store := NewStore(record.NewFileRepository(), "v2.1.0")
	pkg := newTestPackage(t)

	changed, err := store.HasChanged(context.Background(), pkg, testDestination())
	require.NoError(t, err)
	require.True(t, changed)
}

// TestStore_RecordThenUnchanged ensures HasChanged flips to false right after
// RecordPublished with no intervening file modification.
func TestStore_RecordThenUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(record.NewFileRepository(), "v2.1.0")
	pkg := newTestPackage(t)
	dest := testDestination()

	require.NoError(t, store.RecordPublished(ctx, pkg, dest))

	changed, err := store.HasChanged(ctx, pkg, dest)
	require.NoError(t, err)
	require.False(t, changed)

	// RecordPublished is idempotent.
	require.NoError(t, store.RecordPublished(ctx, pkg, dest))

	changed, err = store.HasChanged(ctx, pkg, dest)
	require.NoError(t, err)
	require.False(t, changed)
}

// TestStore_TouchedFileChanges ensures a timestamp change is detected after recording.
func TestStore_TouchedFileChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(record.NewFileRepository(), "v2.1.0")
	pkg := newTestPackage(t)
	dest := testDestination()

	require.NoError(t, store.RecordPublished(ctx, pkg, dest))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(pkg.Dir, "index.js"), future, future))

	changed, err := store.HasChanged(ctx, pkg, dest)
	require.NoError(t, err)
	require.True(t, changed)
}

// TestStore_DestinationChange ensures identical content republishes when the
// destination prefix differs from the recorded one.
func TestStore_DestinationChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(record.NewFileRepository(), "v2.1.0")
	pkg := newTestPackage(t)

	require.NoError(t, store.RecordPublished(ctx, pkg, testDestination()))

	changed, err := store.HasChanged(ctx, pkg,
		publish.NewDestination("solutions", "webchat", "v2.2.0", "eu-west-1"))
	require.NoError(t, err)
	require.True(t, changed)
}

// TestStore_MissingPackageDir ensures a missing directory is an error, not "unchanged".
func TestStore_MissingPackageDir(t *testing.T) {
	t.Parallel()

	store := NewStore(record.NewFileRepository(), "v2.1.0")
	pkg := publish.Package{
		Name: "ghost",
		Dir:  filepath.Join(t.TempDir(), "absent"),
	}

	_, err := store.HasChanged(context.Background(), pkg, testDestination())
	require.Error(t, err)
}
