package adapter

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// SupabaseStorageAdapter implements StorageAdapter on Supabase Storage.
type SupabaseStorageAdapter struct {
	client *storage_go.Client
	logger *zap.Logger
}

// NewSupabaseStorageAdapter wraps a storage client, usually supabase.Client.Storage.
func NewSupabaseStorageAdapter(client *storage_go.Client, logger *zap.Logger) *SupabaseStorageAdapter {
	return &SupabaseStorageAdapter{client: client, logger: logger}
}

// BucketExists looks the bucket up; a not-found answer is not an error.
func (s *SupabaseStorageAdapter) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := s.client.GetBucket(bucket); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get bucket %s: %w", bucket, err)
	}
	return true, nil
}

// CreateBucket creates the bucket.
func (s *SupabaseStorageAdapter) CreateBucket(ctx context.Context, bucket string, public bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.CreateBucket(bucket, storage_go.BucketOptions{Public: public}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	s.logger.Info("storage bucket created", zap.String("bucket", bucket), zap.Bool("public", public))
	return nil
}

// Upload writes the object.
func (s *SupabaseStorageAdapter) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.UploadFile(bucket, path, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Remove deletes the objects.
func (s *SupabaseStorageAdapter) Remove(ctx context.Context, bucket string, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove objects from %s: %w", bucket, err)
	}
	return nil
}

// PublicURL returns the public URL of an object.
func (s *SupabaseStorageAdapter) PublicURL(bucket, path string) string {
	return s.client.GetPublicUrl(bucket, path).SignedURL
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
