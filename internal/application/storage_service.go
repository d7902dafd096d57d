package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/adapter"
	"github.com/tourbook/service-earnings/internal/common/domain"
	"github.com/tourbook/service-earnings/internal/saga"
)

// DefaultAvatarMaxBytes is used when StorageConfig.AvatarMaxBytes is not set.
const DefaultAvatarMaxBytes int64 = 2 << 20

var allowedAvatarTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// StorageConfig configures the avatar bucket.
type StorageConfig struct {
	Bucket              string
	AvatarMaxBytes      int64
	CreateMissingBucket bool
}

// DiagnosticReport is the outcome of a storage diagnostic run.
type DiagnosticReport struct {
	Bucket  string            `json:"bucket"`
	Healthy bool              `json:"healthy"`
	Steps   []saga.StepResult `json:"steps"`
	Error   string            `json:"error,omitempty"`
}

// StorageService handles avatar uploads and storage diagnostics.
type StorageService struct {
	storage adapter.StorageAdapter
	cfg     StorageConfig
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStorageService creates a new StorageService.
func NewStorageService(storage adapter.StorageAdapter, cfg StorageConfig, metrics *Metrics, logger *zap.Logger) *StorageService {
	if cfg.AvatarMaxBytes <= 0 {
		cfg.AvatarMaxBytes = DefaultAvatarMaxBytes
	}
	return &StorageService{
		storage: storage,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Diagnose checks the bucket, then uploads and removes a probe object.
func (s *StorageService) Diagnose(ctx context.Context) DiagnosticReport {
	bucket := s.cfg.Bucket
	probePath := fmt.Sprintf("_diagnostic/probe-%s.txt", uuid.New().String())
	probeUploaded := false

	sg := saga.NewSaga("storage_diagnostic", s.logger)

	sg.AddStep(saga.SagaStep{
		Name: "check_bucket",
		Execute: func(ctx context.Context) error {
			exists, err := s.storage.BucketExists(ctx, bucket)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			if !s.cfg.CreateMissingBucket {
				return fmt.Errorf("bucket %s does not exist", bucket)
			}
			return s.storage.CreateBucket(ctx, bucket, true)
		},
	})

	sg.AddStep(saga.SagaStep{
		Name: "upload_probe",
		Execute: func(ctx context.Context) error {
			body := strings.NewReader("storage diagnostic " + s.now().UTC().Format(time.RFC3339))
			if err := s.storage.Upload(ctx, bucket, probePath, "text/plain", body, true); err != nil {
				return err
			}
			probeUploaded = true
			return nil
		},
		Compensate: func(ctx context.Context) error {
			if !probeUploaded {
				return nil
			}
			return s.storage.Remove(ctx, bucket, probePath)
		},
	})

	sg.AddStep(saga.SagaStep{
		Name: "remove_probe",
		Execute: func(ctx context.Context) error {
			return s.storage.Remove(ctx, bucket, probePath)
		},
	})

	report := DiagnosticReport{Bucket: bucket, Healthy: true}
	if err := sg.Execute(ctx); err != nil {
		report.Healthy = false
		report.Error = err.Error()
	}
	report.Steps = sg.Results()

	outcome := "healthy"
	if !report.Healthy {
		outcome = "unhealthy"
	}
	s.metrics.diagnostics.WithLabelValues(outcome).Inc()
	return report
}

// UploadAvatar validates the image and stores it under the user's folder.
// It returns the public URL of the stored object.
func (s *StorageService) UploadAvatar(ctx context.Context, userID string, r io.Reader) (string, error) {
	if userID == "" {
		return "", domain.NewValidationError("user id is required")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.AvatarMaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("avatar is empty")
	}
	if int64(len(data)) > s.cfg.AvatarMaxBytes {
		return "", domain.NewValidationError(fmt.Sprintf("avatar exceeds %d bytes", s.cfg.AvatarMaxBytes))
	}

	mtype := mimetype.Detect(data)
	if !isAllowedAvatar(mtype) {
		return "", domain.NewValidationError(fmt.Sprintf("unsupported avatar type %s", mtype.String()))
	}

	path := fmt.Sprintf("%s/avatar-%d%s", userID, s.now().Unix(), mtype.Extension())
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if err := s.storage.Upload(ctx, s.cfg.Bucket, path, contentType, bytes.NewReader(data), true); err != nil {
		s.logger.Error("failed to upload avatar",
			zap.String("user_id", userID),
			zap.String("path", path),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Info("avatar uploaded",
		zap.String("user_id", userID),
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
	)
	return s.storage.PublicURL(s.cfg.Bucket, path), nil
}

func isAllowedAvatar(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedAvatarTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}
