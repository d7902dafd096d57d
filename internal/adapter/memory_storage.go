package adapter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryStorageAdapter is a development/testing implementation of StorageAdapter.
// It keeps objects in memory and never talks to a storage provider.
type MemoryStorageAdapter struct {
	baseURL string
	logger  *zap.Logger

	mu      sync.Mutex
	buckets map[string]map[string]memoryObject
}

// NewMemoryStorageAdapter creates an empty in-memory storage.
func NewMemoryStorageAdapter(baseURL string, logger *zap.Logger) *MemoryStorageAdapter {
	return &MemoryStorageAdapter{
		baseURL: baseURL,
		logger:  logger,
		buckets: make(map[string]map[string]memoryObject),
	}
}

// BucketExists reports whether the bucket was created.
func (m *MemoryStorageAdapter) BucketExists(ctx context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.buckets[bucket]
	return ok, nil
}

// CreateBucket creates the bucket if it does not exist yet.
func (m *MemoryStorageAdapter) CreateBucket(ctx context.Context, bucket string, public bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
	m.logger.Info("[MEMORY STORAGE] bucket created",
		zap.String("bucket", bucket),
		zap.Bool("public", public),
	)
	return nil
}

// Upload stores the object body.
func (m *MemoryStorageAdapter) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, upsert bool) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return ErrBucketNotFound
	}
	if _, exists := objects[path]; exists && !upsert {
		return fmt.Errorf("object %s/%s already exists", bucket, path)
	}
	objects[path] = memoryObject{contentType: contentType, data: data}

	m.logger.Info("[MEMORY STORAGE] object uploaded",
		zap.String("bucket", bucket),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Remove deletes the objects; missing paths are ignored.
func (m *MemoryStorageAdapter) Remove(ctx context.Context, bucket string, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return ErrBucketNotFound
	}
	for _, p := range paths {
		delete(objects, p)
	}
	m.logger.Info("[MEMORY STORAGE] objects removed",
		zap.String("bucket", bucket),
		zap.Strings("paths", paths),
	)
	return nil
}

// PublicURL builds a URL in the same shape the storage provider uses.
func (m *MemoryStorageAdapter) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", m.baseURL, bucket, path)
}

// Object returns a stored object's content type and body.
func (m *MemoryStorageAdapter) Object(bucket, path string) (contentType string, data []byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][path]
	return obj.contentType, obj.data, ok
}
