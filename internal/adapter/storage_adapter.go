package adapter

import (
	"context"
	"errors"
	"io"
)

// ErrBucketNotFound is returned when the requested bucket does not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// StorageAdapter defines the Anti-Corruption Layer interface for object storage.
// This abstraction decouples the services from the storage provider's API.
type StorageAdapter interface {
	// BucketExists reports whether the bucket exists.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates a bucket, public when public is true.
	CreateBucket(ctx context.Context, bucket string, public bool) error

	// Upload writes an object, replacing it when upsert is true.
	Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, upsert bool) error

	// Remove deletes objects.
	Remove(ctx context.Context, bucket string, paths ...string) error

	// PublicURL returns the public URL of an object.
	PublicURL(bucket, path string) string
}
