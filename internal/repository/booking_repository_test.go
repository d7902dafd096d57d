package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tourbook/service-earnings/internal/domain/booking"
)

const findByGuideQuery = `SELECT "status","total_price" FROM "bookings" WHERE guide_id = \$1 AND status IN \(\$2,\$3\)`

func newMockRepository(t *testing.T) (*BookingRepositoryImpl, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewBookingRepository(db), mock
}

func TestBookingRepository_FindByGuide(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(findByGuideQuery).
		WithArgs("g-1", "paid", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_price"}).
			AddRow("paid", "100.00").
			AddRow("paid", "50.25").
			AddRow("completed", "200.00"))

	rows, err := repo.FindByGuide(context.Background(), "g-1", booking.FinancialStatuses)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, booking.StatusPaid, rows[0].Status)
	assert.Equal(t, "50.25", rows[1].TotalPrice.String())
	assert.Equal(t, booking.StatusCompleted, rows[2].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByGuideEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(findByGuideQuery).
		WithArgs("g-2", "paid", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_price"}))

	rows, err := repo.FindByGuide(context.Background(), "g-2", booking.FinancialStatuses)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByGuideError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(findByGuideQuery).
		WithArgs("g-1", "paid", "completed").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindByGuide(context.Background(), "g-1", booking.FinancialStatuses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
