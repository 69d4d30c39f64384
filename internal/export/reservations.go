package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	ReservationSheet = "Reservations"
	ContentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var reservationHeader = []interface{}{
	"Reservation ID", "Date", "Time", "Table ID", "User ID", "Status", "Meals", "Booked At",
}

// WriteReservations renders reservations as a single-sheet workbook, one row per reservation.
func WriteReservations(w io.Writer, reservations []model.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReservationSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(ReservationSheet, "A1", &reservationHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(ReservationSheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range reservations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.Date,
			r.Time,
			r.TableID,
			r.UserID,
			string(r.Status),
			mealSummary(r.Meals),
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(ReservationSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write reservation %d: %w", r.ID, err)
		}
	}

	if err := f.SetColWidth(ReservationSheet, "A", "H", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(ReservationSheet, "G", "G", 32); err != nil {
		return err
	}
	return f.Write(w)
}

// mealSummary formats line items as "meal 3 x2; meal 7 x1" in booking order.
func mealSummary(items []model.ReservationMeal) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("meal %d x%d", item.MealID, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

// FileName is the attachment name used for a restaurant's export.
func FileName(restaurantID uint) string {
	return fmt.Sprintf("reservations-restaurant-%d.xlsx", restaurantID)
}
