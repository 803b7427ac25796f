package publish

import (
	"fmt"
	"path"
	"strings"
)

// RecordFilename is the per-package publish record written next to the
// package sources after a successful publish. Change signatures skip it,
// otherwise recording a publish would immediately mark the package changed.
const RecordFilename = ".stack-publisher-record.yaml"

// Destination identifies where a solution release is uploaded.
// It is threaded explicitly through every checksum computation so that a
// bucket, prefix or region change forces a republish of byte-identical content.
type Destination struct {
	// Bucket is the full bucket name (base name suffixed with the region).
	Bucket string
	// Prefix is the key prefix including the solution version, e.g. "webchat/v2.1.0".
	Prefix string
	// Region is the target region the release is published for.
	Region string
}

// NewDestination derives the destination from the raw CLI inputs:
// the bucket base name, the solution prefix and the solution version.
func NewDestination(bucketBaseName, prefix, version, region string) Destination {
	return Destination{
		Bucket: bucketBaseName + "-" + region,
		Prefix: path.Join(prefix, version),
		Region: region,
	}
}

// Key returns the canonical identity string of the destination.
// It is mixed into every change signature.
func (d Destination) Key() string {
	return strings.Join([]string{d.Bucket, d.Prefix, d.Region}, "|")
}

// ObjectKey joins the destination prefix with the provided path elements.
func (d Destination) ObjectKey(elements ...string) string {
	return path.Join(append([]string{d.Prefix}, elements...)...)
}

// ObjectURL returns the HTTPS URL of an object stored under the destination.
func (d Destination) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.Bucket, d.Region, key)
}
