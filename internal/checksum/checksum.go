package checksum

import (
	"crypto"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"

	// Ensure SHA256 is available for checksum calculation.
	_ "crypto/sha256"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// DefaultChecksumFunction is used for content hashes and change signatures.
	DefaultChecksumFunction crypto.Hash = crypto.SHA256

	// ContentHashLength is the number of hex characters kept from the full
	// content digest. Short enough for object keys, long enough to make
	// accidental collisions between releases implausible.
	ContentHashLength = 16
)

// fileEntry is one regular file found during a package walk.
type fileEntry struct {
	// rel is the slash-separated path relative to the walk root.
	rel string
	// path is the absolute (or caller-relative) filesystem path.
	path string
	// modTime is the file's last modification timestamp.
	modTime time.Time
}

// ContentHash fingerprints the contents of a package directory.
//
// Directories whose base name is in excludedDirs are pruned recursively
// together with their whole subtree. Remaining regular files are sorted by
// case-normalized relative path so the result does not depend on the
// filesystem's iteration order, each file's contents are digested, and the
// digest of the concatenated per-file digest lines is returned truncated to
// ContentHashLength hex characters.
//
// The result depends only on file contents and relative layout: timestamps,
// permissions and the upload destination never influence it. Identical
// content therefore always maps to the identical artifact name, which is how
// downstream custom resources detect that a re-fetch is needed.
//
// The publish record file is skipped like in ChangeSignature: it is pipeline
// bookkeeping, and including it would assign a fresh artifact name to a
// package whose content never changed.
func ContentHash(dir string, excludedDirs []string) (string, error) {
	files, err := collectFiles(dir, sliceToSet(excludedDirs), sliceToSet([]string{publish.RecordFilename}))
	if err != nil {
		return "", err
	}

	if !DefaultChecksumFunction.Available() {
		return "", fmt.Errorf("content hash not possible: %w", errHashUnavailable)
	}

	var manifest strings.Builder

	for _, file := range files {
		digest, err := fileDigest(file.path)
		if err != nil {
			return "", err
		}

		// One line per file: digest and relative path, in sorted order.
		fmt.Fprintf(&manifest, "%x  %s\n", digest, file.rel)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = io.WriteString(hasher, manifest.String()); err != nil {
		return "", fmt.Errorf("hash content manifest: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))[:ContentHashLength], nil
}

// ChangeSignature fingerprints a package for skip-vs-rebuild decisions.
//
// It walks the same file set as ContentHash (additionally skipping the
// publish record file itself), digests the concatenation of per-file
// "path timestamp" lines in sorted path order, then digests the destination
// identity together with that timestamp digest. Either a touched file, a
// renamed file, or a changed destination (bucket, versioned prefix or
// region) produces a new signature, so byte-identical content still
// republishes when it previously went to a different place. Paths are part
// of each line: a rename that preserves modification times still changes
// the content-addressed artifact name and must republish.
//
// The file enumeration is explicitly sorted before hashing; unstable
// directory iteration order must never produce a spurious "changed" verdict.
func ChangeSignature(dir string, excludedDirs []string, dest publish.Destination) (string, error) {
	files, err := collectFiles(dir, sliceToSet(excludedDirs), sliceToSet([]string{publish.RecordFilename}))
	if err != nil {
		return "", err
	}

	if !DefaultChecksumFunction.Available() {
		return "", fmt.Errorf("change signature not possible: %w", errHashUnavailable)
	}

	var timestamps strings.Builder

	for _, file := range files {
		// One line per file: relative path and timestamp, in sorted order.
		timestamps.WriteString(file.rel)
		timestamps.WriteByte(' ')
		timestamps.WriteString(file.modTime.UTC().Format(time.RFC3339Nano))
		timestamps.WriteByte('\n')
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = io.WriteString(hasher, timestamps.String()); err != nil {
		return "", fmt.Errorf("hash timestamps: %w", err)
	}

	timestampDigest := fmt.Sprintf("%x", hasher.Sum(nil))

	hasher = DefaultChecksumFunction.New()
	if _, err = io.WriteString(hasher, dest.Key()+"\n"+timestampDigest); err != nil {
		return "", fmt.Errorf("hash signature: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// collectFiles enumerates regular files under root, pruning excluded
// directories recursively and skipping excluded file names, and returns
// them sorted by case-normalized relative path.
func collectFiles(root string, excludedDirs, excludedFiles map[string]struct{}) ([]fileEntry, error) {
	var files []fileEntry

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}

			if _, ok := excludedDirs[entry.Name()]; ok {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if _, ok := excludedFiles[entry.Name()]; ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		files = append(files, fileEntry{
			rel:     filepath.ToSlash(rel),
			path:    path,
			modTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}

	// Case-normalized lexical order keeps the result identical across
	// platforms and filesystems; ties fall back to the exact path so two
	// files differing only in case still sort deterministically.
	sort.Slice(files, func(i, j int) bool {
		a, b := strings.ToLower(files[i].rel), strings.ToLower(files[j].rel)
		if a == b {
			return files[i].rel < files[j].rel
		}

		return a < b
	})

	return files, nil
}

// fileDigest returns the digest of a single file's contents.
func fileDigest(path string) ([]byte, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = file.Close()
	}()

	hasher := DefaultChecksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	return hasher.Sum(nil), nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
