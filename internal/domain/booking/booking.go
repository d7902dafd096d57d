package booking

import (
	"context"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a tour booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// FinancialStatuses are the states that count towards a guide's earnings.
var FinancialStatuses = []Status{StatusPaid, StatusCompleted}

// Booking is the projection of a booking row the earnings view needs.
// The booking system owns the full record.
type Booking struct {
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Source is the read side of the bookings relation.
type Source interface {
	// FindByGuide returns the bookings owned by guideID whose status is one of
	// statuses. No matching rows is an empty slice, not an error.
	FindByGuide(ctx context.Context, guideID string, statuses []Status) ([]Booking, error)
}

// StatusStrings converts statuses for query builders that take plain strings.
func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
