package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/export"
	"github.com/tabletime/tabletime-backend/internal/middleware"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
	}
}

type CreateReservationRequest struct {
	RestaurantID uint                      `json:"restaurant_id" binding:"required"`
	TableID      uint                      `json:"table_id" binding:"required"`
	Date         string                    `json:"date" binding:"required"`
	Time         string                    `json:"time" binding:"required"`
	Meals        []service.ReservationLine `json:"meals" binding:"omitempty,dive"`
}

type UpdateReservationRequest struct {
	TableID *uint                     `json:"table_id"`
	Date    *string                   `json:"date"`
	Time    *string                   `json:"time"`
	Meals   []service.ReservationLine `json:"meals" binding:"omitempty,dive"`
}

type ChangeReservationStatusRequest struct {
	Status model.ReservationStatus `json:"status" binding:"required"`
}

// Create books a table slot
// POST /api/v1/reservations/create
func (ctrl *ReservationController) Create(c *gin.Context) {
	const location = "reservation.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateReservationRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	reservation, err := ctrl.reservationService.Create(c.Request.Context(), userID, service.CreateReservationInput{
		RestaurantID: req.RestaurantID,
		TableID:      req.TableID,
		Date:         req.Date,
		Time:         req.Time,
		Meals:        req.Meals,
	})
	if err != nil {
		respondError(c, err, location)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Reservation created", map[string]interface{}{
		"reservation_id": reservation.ID,
		"restaurant_id":  reservation.RestaurantID,
	})
	response.Created(c, "Reservation created", reservation)
}

// Update reschedules a reservation that is still reserved
// PUT /api/v1/reservations/update/:id
func (ctrl *ReservationController) Update(c *gin.Context) {
	const location = "reservation.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reservationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateReservationRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	reservation, err := ctrl.reservationService.Update(c.Request.Context(), userID, reservationID, service.UpdateReservationInput{
		TableID: req.TableID,
		Date:    req.Date,
		Time:    req.Time,
		Meals:   req.Meals,
	})
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Reservation updated", reservation)
}

// ChangeStatus cancels or completes a reservation
// PATCH /api/v1/reservations/status/:id
func (ctrl *ReservationController) ChangeStatus(c *gin.Context) {
	const location = "reservation.status"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reservationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ChangeReservationStatusRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	reservation, err := ctrl.reservationService.ChangeStatus(c.Request.Context(), userID, reservationID, req.Status)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Reservation status updated", reservation)
}

// GET /api/v1/reservations/:id
func (ctrl *ReservationController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reservationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	reservation, err := ctrl.reservationService.Get(c.Request.Context(), userID, reservationID)
	if err != nil {
		respondError(c, err, "reservation.get")
		return
	}
	response.OK(c, "Reservation fetched", reservation)
}

// GET /api/v1/reservations/my
func (ctrl *ReservationController) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p := pagination(c)
	reservations, total, err := ctrl.reservationService.ListMine(c.Request.Context(), userID, p)
	if err != nil {
		respondError(c, err, "reservation.list_mine")
		return
	}
	response.Paginated(c, "Reservations fetched", reservations, p, total)
}

func reservationFilter(c *gin.Context) service.ReservationFilter {
	return service.ReservationFilter{
		Status: model.ReservationStatus(c.Query("status")),
		Date:   c.Query("date"),
	}
}

// ListForRestaurant lists a restaurant's reservations for its owner
// GET /api/v1/reservations/restaurant/:restaurantId?status=&date=
func (ctrl *ReservationController) ListForRestaurant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	p := pagination(c)
	reservations, total, err := ctrl.reservationService.ListForRestaurant(c.Request.Context(), userID, restaurantID, reservationFilter(c), p)
	if err != nil {
		respondError(c, err, "reservation.list_restaurant")
		return
	}
	response.Paginated(c, "Reservations fetched", reservations, p, total)
}

// Export downloads the same listing as an xlsx workbook
// GET /api/v1/reservations/restaurant/:restaurantId/export
func (ctrl *ReservationController) Export(c *gin.Context) {
	const location = "reservation.export"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	reservations, err := ctrl.reservationService.ExportForRestaurant(c.Request.Context(), userID, restaurantID, reservationFilter(c))
	if err != nil {
		respondError(c, err, location)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReservations(&buf, reservations); err != nil {
		respondError(c, err, location)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(restaurantID)))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
