package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudcourier/stack-publisher/internal/domain/publish"
)

// Substitution tokens recognized in the main template.
const (
	// TokenBucket is replaced with the full destination bucket name.
	TokenBucket = "%%BUCKET_NAME%%"
	// TokenKeyPrefix is replaced with the versioned key prefix.
	TokenKeyPrefix = "%%KEY_PREFIX%%"
	// TokenVersion is replaced with the solution version string.
	TokenVersion = "%%VERSION%%"
	// TokenRegion is replaced with the target region.
	TokenRegion = "%%REGION%%"
	// TokenExtensionLocation is replaced with the fully qualified URL of
	// the browser-extension artifact.
	TokenExtensionLocation = "%%EXTENSION_LOCATION%%"
)

// ErrUnresolvedToken is returned when finalization leaves token patterns behind.
var ErrUnresolvedToken = errors.New("unresolved template token")

// tokenPattern matches any substitution token remaining in a template.
var tokenPattern = regexp.MustCompile(`%%[A-Z0-9_]+%%`)

// Validator submits a finalized template to an external validation service.
type Validator interface {
	Validate(ctx context.Context, templateURL string) error
}

// Substitutions returns the standard token set for a destination, solution
// version and resolved extension artifact location.
func Substitutions(dest publish.Destination, version, extensionLocation string) map[string]string {
	return map[string]string{
		TokenBucket:            dest.Bucket,
		TokenKeyPrefix:         dest.Prefix,
		TokenVersion:           version,
		TokenRegion:            dest.Region,
		TokenExtensionLocation: extensionLocation,
	}
}

// Finalize replaces every occurrence of each token with its value and fails
// loudly if any token pattern survives; a silently unresolved token would
// only surface much later as a broken deployed stack.
func Finalize(text string, substitutions map[string]string) (string, error) {
	for token, value := range substitutions {
		text = strings.ReplaceAll(text, token, value)
	}

	if leftover := tokenPattern.FindAllString(text, -1); len(leftover) > 0 {
		unique := make(map[string]struct{}, len(leftover))
		for _, token := range leftover {
			unique[token] = struct{}{}
		}

		names := make([]string, 0, len(unique))
		for token := range unique {
			names = append(names, token)
		}

		sort.Strings(names)

		return "", fmt.Errorf("%w: %s", ErrUnresolvedToken, strings.Join(names, ", "))
	}

	return text, nil
}
