package storage

import "context"

// ObjectStore is the slice of the object-store API the pipeline needs:
// uploading finalized templates and staged artifacts, listing a release
// prefix, and flipping individual objects to public-read.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	SetPublicRead(ctx context.Context, key string) error
}
