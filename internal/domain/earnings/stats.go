// Package earnings derives a guide's payment statistics from booking rows.
package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/tourbook/service-earnings/internal/domain/booking"
)

// PaymentStats is the derived earnings aggregate for one guide. It is always
// computed from a full result set and replaced as a whole.
type PaymentStats struct {
	// PendingPayments counts paid bookings whose tour has not completed yet.
	PendingPayments int64
	// CompletedPayments counts completed bookings.
	CompletedPayments int64
	PendingEarnings   decimal.Decimal
	CompletedEarnings decimal.Decimal
	// TotalEarnings is PendingEarnings + CompletedEarnings.
	TotalEarnings decimal.Decimal
}

// Zero returns the initial value shown before any fetch succeeds.
func Zero() PaymentStats {
	return PaymentStats{
		PendingEarnings:   decimal.Zero,
		CompletedEarnings: decimal.Zero,
		TotalEarnings:     decimal.Zero,
	}
}

// Compute partitions rows by status and reduces each partition to a count and
// a sum. Rows outside the financial statuses are ignored.
func Compute(rows []booking.Booking) PaymentStats {
	stats := Zero()
	for _, row := range rows {
		switch row.Status {
		case booking.StatusPaid:
			stats.PendingPayments++
			stats.PendingEarnings = stats.PendingEarnings.Add(row.TotalPrice)
		case booking.StatusCompleted:
			stats.CompletedPayments++
			stats.CompletedEarnings = stats.CompletedEarnings.Add(row.TotalPrice)
		}
	}
	stats.TotalEarnings = stats.PendingEarnings.Add(stats.CompletedEarnings)
	return stats
}

// Equal compares two aggregates by numeric value, so 1.50 equals 1.5.
func (s PaymentStats) Equal(other PaymentStats) bool {
	return s.PendingPayments == other.PendingPayments &&
		s.CompletedPayments == other.CompletedPayments &&
		s.PendingEarnings.Equal(other.PendingEarnings) &&
		s.CompletedEarnings.Equal(other.CompletedEarnings) &&
		s.TotalEarnings.Equal(other.TotalEarnings)
}

// IsZero reports whether s carries no bookings at all.
func (s PaymentStats) IsZero() bool {
	return s.Equal(Zero())
}
