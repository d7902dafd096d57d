package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tourbook/service-earnings/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GuideID    string          `gorm:"type:varchar(64);index;not null"`
	TouristID  string          `gorm:"type:varchar(64);not null"`
	TourID     string          `gorm:"type:varchar(64)"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;check:bookings_total_price_check,total_price >= 0"`
	CreatedAt  time.Time       `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt  time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of booking.Source.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByGuide selects status and total_price of the guide's bookings whose
// status is one of statuses.
func (r *BookingRepositoryImpl) FindByGuide(ctx context.Context, guideID string, statuses []booking.Status) ([]booking.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Select("status", "total_price").
		Where("guide_id = ? AND status IN ?", guideID, booking.StatusStrings(statuses)).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	rows := make([]booking.Booking, len(models))
	for i := range models {
		rows[i] = toDomain(&models[i])
	}
	return rows, nil
}

// toDomain maps a BookingModel to the projected booking row.
func toDomain(model *BookingModel) booking.Booking {
	return booking.Booking{
		Status:     booking.Status(model.Status),
		TotalPrice: model.TotalPrice,
	}
}
