package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/middleware"
	ws "github.com/tabletime/tabletime-backend/internal/websocket"
)

// ReservationEventsController streams reservation events of the caller's restaurant.
type ReservationEventsController struct {
	restaurantService service.RestaurantService
	hub               *ws.Hub
	upgrader          *websocket.Upgrader
}

func NewReservationEventsController(restaurantService service.RestaurantService, hub *ws.Hub, allowedOrigins []string) *ReservationEventsController {
	return &ReservationEventsController{
		restaurantService: restaurantService,
		hub:               hub,
		upgrader:          ws.NewUpgrader(allowedOrigins),
	}
}

// Subscribe upgrades to a websocket bound to the owner's restaurant
// GET /api/v1/ws/reservations
// The token may come in the query string; it is never logged.
func (ctrl *ReservationEventsController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurant, err := ctrl.restaurantService.GetByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "reservation.subscribe")
		return
	}

	if err := ctrl.hub.Serve(ctrl.upgrader, c.Writer, c.Request, userID, restaurant.ID); err != nil {
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurant.ID,
	})
}
