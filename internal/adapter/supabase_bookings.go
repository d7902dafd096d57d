package adapter

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/domain/booking"
)

const bookingsTable = "bookings"

// SupabaseBookingSource reads bookings through the Supabase PostgREST API.
type SupabaseBookingSource struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewSupabaseBookingSource creates a booking source backed by client.
func NewSupabaseBookingSource(client *supabase.Client, logger *zap.Logger) *SupabaseBookingSource {
	return &SupabaseBookingSource{client: client, logger: logger}
}

// FindByGuide selects status and total_price of the guide's bookings whose
// status is one of statuses.
func (s *SupabaseBookingSource) FindByGuide(ctx context.Context, guideID string, statuses []booking.Status) ([]booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []booking.Booking
	_, err := s.client.
		From(bookingsTable).
		Select("status,total_price", "", false).
		Eq("guide_id", guideID).
		In("status", booking.StatusStrings(statuses)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	s.logger.Debug("bookings loaded from supabase",
		zap.String("guide_id", guideID),
		zap.Int("rows", len(rows)),
	)
	if rows == nil {
		rows = []booking.Booking{}
	}
	return rows, nil
}
