package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

func TestWriteReservations(t *testing.T) {
	booked := time.Date(2026, 4, 30, 8, 15, 0, 0, time.UTC)
	reservations := []model.Reservation{
		{
			ID: 7, Date: "2026-05-01", Time: "19:00", TableID: 2, UserID: 11,
			Status: model.ReservationReserved, CreatedAt: booked,
			Meals: []model.ReservationMeal{{MealID: 3, Quantity: 2}, {MealID: 5, Quantity: 1}},
		},
		{
			ID: 8, Date: "2026-05-02", Time: "12:30", TableID: 1, UserID: 12,
			Status: model.ReservationCanceled, CreatedAt: booked,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReservations(&buf, reservations))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReservationSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Reservation ID", rows[0][0])
	assert.Equal(t, []string{"7", "2026-05-01", "19:00", "2", "11", "reserved", "meal 3 x2; meal 5 x1", "2026-04-30 08:15"}, rows[1])
	assert.Equal(t, "canceled", rows[2][5])
}

func TestWriteReservations_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReservations(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReservationSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "reservations-restaurant-4.xlsx", FileName(4))
}
