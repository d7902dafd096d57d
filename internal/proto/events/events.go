// Package events defines the topics, event types and payloads exchanged over Kafka.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topics.
const (
	TopicBookingEvents  = "booking.events"
	TopicEarningsEvents = "earnings.events"
)

// Booking event types produced by the booking system.
const (
	BookingPaid      = "booking.paid"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
	BookingRefunded  = "booking.refunded"
)

// Earnings event types produced by this service.
const (
	EarningsRefreshed = "earnings.refreshed"
)

// BookingChangedEvent is the payload of every booking.* event this service reads.
type BookingChangedEvent struct {
	BookingID  string          `json:"booking_id"`
	GuideID    string          `json:"guide_id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EarningsRefreshedEvent is published after a guide's statistics were recomputed.
type EarningsRefreshedEvent struct {
	GuideID           string          `json:"guide_id"`
	PendingPayments   int64           `json:"pending_payments"`
	CompletedPayments int64           `json:"completed_payments"`
	PendingEarnings   decimal.Decimal `json:"pending_earnings"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	RefreshedAt       time.Time       `json:"refreshed_at"`
}
