package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/common/domain"
	"github.com/tourbook/service-earnings/internal/common/kafka"
	"github.com/tourbook/service-earnings/internal/domain/booking"
	"github.com/tourbook/service-earnings/internal/domain/earnings"
	"github.com/tourbook/service-earnings/internal/proto/events"
)

const eventSource = "service-earnings"

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// StatsDTO is the API response DTO for payment statistics. The booking count
// fields mirror the payment count fields for older clients.
type StatsDTO struct {
	PendingPayments        int64           `json:"pending_payments"`
	CompletedPayments      int64           `json:"completed_payments"`
	PendingEarnings        decimal.Decimal `json:"pending_earnings"`
	CompletedEarnings      decimal.Decimal `json:"completed_earnings"`
	TotalEarnings          decimal.Decimal `json:"total_earnings"`
	PaidBookingsCount      int64           `json:"paid_bookings_count"`
	CompletedBookingsCount int64           `json:"completed_bookings_count"`
	RefreshedAt            *time.Time      `json:"refreshed_at,omitempty"`
}

// SnapshotDTO is the API response DTO for a viewer's earnings view.
type SnapshotDTO struct {
	Stats     StatsDTO `json:"stats"`
	IsLoading bool     `json:"is_loading"`
	Error     string   `json:"error,omitempty"`
}

// EarningsService is the application service that orchestrates earnings use cases.
type EarningsService struct {
	source    booking.Source
	registry  *Registry
	publisher EventPublisher
	metrics   *Metrics
	logger    *zap.Logger
}

// NewEarningsService creates a new EarningsService. publisher may be nil, in
// which case no earnings.refreshed events are emitted.
func NewEarningsService(
	source booking.Source,
	publisher EventPublisher,
	metrics *Metrics,
	logger *zap.Logger,
) *EarningsService {
	s := &EarningsService{
		source:    source,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
	s.registry = NewRegistry(s.newAggregator, metrics)
	return s
}

func (s *EarningsService) newAggregator(userID string) *Aggregator {
	agg := NewAggregator(s.source, s.metrics, s.logger.With(zap.String("user_id", userID)))
	if s.publisher != nil {
		agg.Subscribe(s.publishRefreshed)
	}
	return agg
}

// Open returns the viewer's snapshot, starting the session on first use.
func (s *EarningsService) Open(ctx context.Context, userID string, role auth.Role) SnapshotDTO {
	agg, _ := s.registry.Attach(ctx, userID, role)
	return toSnapshotDTO(agg.Snapshot())
}

// Refresh recomputes the viewer's statistics and returns the new snapshot.
func (s *EarningsService) Refresh(ctx context.Context, userID string, role auth.Role) SnapshotDTO {
	agg, changed := s.registry.Attach(ctx, userID, role)
	if !changed {
		agg.Refresh(ctx)
	}
	return toSnapshotDTO(agg.Snapshot())
}

// Close discards the viewer's session. It reports whether one existed.
func (s *EarningsService) Close(userID string) bool {
	closed := s.registry.Detach(userID)
	if closed {
		s.logger.Info("earnings session closed", zap.String("user_id", userID))
	}
	return closed
}

// ActiveSessions returns the number of open sessions.
func (s *EarningsService) ActiveSessions() int {
	return s.registry.Len()
}

// GuideEarnings computes a guide's statistics without a session (admin).
func (s *EarningsService) GuideEarnings(ctx context.Context, guideID string) (*StatsDTO, error) {
	if guideID == "" {
		return nil, domain.NewValidationError("guide id is required")
	}

	rows, err := s.source.FindByGuide(ctx, guideID, booking.FinancialStatuses)
	if err != nil {
		s.logger.Error("failed to load guide bookings",
			zap.String("guide_id", guideID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load bookings for guide %s: %w", guideID, err)
	}

	dto := toStatsDTO(earnings.Compute(rows), time.Now().UTC())
	return &dto, nil
}

// HandleBookingChanged refreshes the active view of the booking's guide.
func (s *EarningsService) HandleBookingChanged(ctx context.Context, event events.BookingChangedEvent) error {
	if event.GuideID == "" {
		return domain.NewValidationError("booking event has no guide_id")
	}

	s.logger.Info("handling booking changed event",
		zap.String("booking_id", event.BookingID),
		zap.String("guide_id", event.GuideID),
		zap.String("status", event.Status),
	)

	agg, ok := s.registry.Lookup(event.GuideID)
	if !ok {
		s.logger.Debug("no active earnings session for guide, skipping refresh",
			zap.String("guide_id", event.GuideID),
		)
		return nil
	}

	agg.Refresh(ctx)
	return nil
}

// publishRefreshed emits earnings.refreshed after each successful settle.
func (s *EarningsService) publishRefreshed(ctx context.Context, change Change) {
	if change.Kind != FetchSucceeded {
		return
	}

	stats := change.Snapshot.Stats
	event := events.EarningsRefreshedEvent{
		GuideID:           change.GuideID,
		PendingPayments:   stats.PendingPayments,
		CompletedPayments: stats.CompletedPayments,
		PendingEarnings:   stats.PendingEarnings,
		TotalEarnings:     stats.TotalEarnings,
		RefreshedAt:       change.Snapshot.RefreshedAt,
	}
	ce, err := kafka.NewCloudEvent(eventSource, events.EarningsRefreshed, event)
	if err != nil {
		s.logger.Error("failed to create earnings refreshed cloud event", zap.Error(err))
		return
	}
	ce.Subject = change.GuideID

	if err := s.publisher.PublishEvent(ctx, events.TopicEarningsEvents, ce); err != nil {
		s.logger.Error("failed to publish earnings refreshed event",
			zap.String("guide_id", change.GuideID),
			zap.Error(err),
		)
	}
}

func toSnapshotDTO(snap Snapshot) SnapshotDTO {
	return SnapshotDTO{
		Stats:     toStatsDTO(snap.Stats, snap.RefreshedAt),
		IsLoading: snap.IsLoading,
		Error:     snap.Error,
	}
}

// toStatsDTO maps PaymentStats to a StatsDTO.
func toStatsDTO(stats earnings.PaymentStats, refreshedAt time.Time) StatsDTO {
	dto := StatsDTO{
		PendingPayments:        stats.PendingPayments,
		CompletedPayments:      stats.CompletedPayments,
		PendingEarnings:        stats.PendingEarnings,
		CompletedEarnings:      stats.CompletedEarnings,
		TotalEarnings:          stats.TotalEarnings,
		PaidBookingsCount:      stats.PendingPayments,
		CompletedBookingsCount: stats.CompletedPayments,
	}
	if !refreshedAt.IsZero() {
		dto.RefreshedAt = &refreshedAt
	}
	return dto
}
