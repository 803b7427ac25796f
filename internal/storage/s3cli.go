package storage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// S3CLI implements ObjectStore by shelling out to the aws CLI, mirroring how
// the surrounding build scripts interact with the object store. The CLI's
// presence is verified by the publisher's preflight checks.
type S3CLI struct {
	// Bucket is the destination bucket all keys are relative to.
	Bucket string
	// Region is passed to every CLI invocation.
	Region string
}

// NewS3CLI creates a CLI-backed object store for the given bucket and region.
func NewS3CLI(bucket, region string) *S3CLI {
	return &S3CLI{
		Bucket: bucket,
		Region: region,
	}
}

// Put uploads the body under the given key.
func (s *S3CLI) Put(ctx context.Context, key string, body []byte) error {
	staged, err := os.CreateTemp("", "stack-publisher-put-*")
	if err != nil {
		return fmt.Errorf("stage object %s: %w", key, err)
	}

	defer func() {
		_ = os.Remove(staged.Name())
	}()

	if _, err = staged.Write(body); err != nil {
		_ = staged.Close()
		return fmt.Errorf("stage object %s: %w", key, err)
	}

	if err = staged.Close(); err != nil {
		return fmt.Errorf("stage object %s: %w", key, err)
	}

	return s.run(ctx, "s3", "cp", staged.Name(), fmt.Sprintf("s3://%s/%s", s.Bucket, key), "--region", s.Region)
}

// List returns all keys under the given prefix.
func (s *S3CLI) List(ctx context.Context, prefix string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "aws", "s3api", "list-objects-v2",
		"--bucket", s.Bucket,
		"--prefix", prefix,
		"--query", "Contents[].Key",
		"--output", "text",
		"--region", s.Region)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", s.Bucket, prefix, err)
	}

	return ParseKeyListing(string(output)), nil
}

// SetPublicRead flips a single object to public-read.
func (s *S3CLI) SetPublicRead(ctx context.Context, key string) error {
	return s.run(ctx, "s3api", "put-object-acl",
		"--bucket", s.Bucket,
		"--key", key,
		"--acl", "public-read",
		"--region", s.Region)
}

// run executes one aws CLI invocation and wraps failures with its output.
func (s *S3CLI) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "aws", args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("aws %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(output)), err)
	}

	return nil
}

// ParseKeyListing splits the CLI's text-format key listing into keys.
// Text output separates keys with tabs and newlines; object keys may
// themselves contain spaces, so only those separators split. An empty
// listing is rendered by the CLI as the literal "None".
func ParseKeyListing(output string) []string {
	fields := strings.FieldsFunc(output, func(r rune) bool {
		return r == '\t' || r == '\n' || r == '\r'
	})

	keys := make([]string, 0, len(fields))

	for _, field := range fields {
		if field == "" || field == "None" {
			continue
		}

		keys = append(keys, field)
	}

	return keys
}
