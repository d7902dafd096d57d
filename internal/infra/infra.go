// Package infra builds the adapters selected by configuration.
package infra

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tourbook/service-earnings/internal/adapter"
	"github.com/tourbook/service-earnings/internal/config"
	"github.com/tourbook/service-earnings/internal/domain/booking"
	"github.com/tourbook/service-earnings/internal/repository"
)

// NewSupabaseClient returns nil when no Supabase project is configured.
func NewSupabaseClient(cfg config.SupabaseConfig) (*supabase.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// NewBookingSource returns the booking source named by BOOKING_SOURCE.
func NewBookingSource(kind string, db *gorm.DB, sb *supabase.Client, logger *zap.Logger) (booking.Source, error) {
	switch kind {
	case config.BookingSourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("booking source %q needs a database connection", kind)
		}
		return repository.NewBookingRepository(db), nil
	case config.BookingSourceSupabase:
		if sb == nil {
			return nil, fmt.Errorf("booking source %q needs a supabase client", kind)
		}
		return adapter.NewSupabaseBookingSource(sb, logger), nil
	default:
		return nil, fmt.Errorf("unknown booking source %q", kind)
	}
}

// NewStorageAdapter uses Supabase Storage when a client is available and an
// in-memory store otherwise. The in-memory store starts with bucket created.
func NewStorageAdapter(ctx context.Context, sb *supabase.Client, bucket string, logger *zap.Logger) (adapter.StorageAdapter, error) {
	if sb != nil {
		return adapter.NewSupabaseStorageAdapter(sb.Storage, logger), nil
	}

	logger.Warn("supabase not configured, using in-memory avatar storage", zap.String("bucket", bucket))
	memory := adapter.NewMemoryStorageAdapter("http://localhost", logger)
	if err := memory.CreateBucket(ctx, bucket, true); err != nil {
		return nil, fmt.Errorf("failed to create in-memory bucket %s: %w", bucket, err)
	}
	return memory, nil
}
