package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type VipRoomController struct {
	vipRoomService service.VipRoomService
	cascade        service.CascadeService
}

func NewVipRoomController(vipRoomService service.VipRoomService, cascade service.CascadeService) *VipRoomController {
	return &VipRoomController{
		vipRoomService: vipRoomService,
		cascade:        cascade,
	}
}

type CreateVipRoomRequest struct {
	RestaurantID uint   `form:"restaurant_id" binding:"required"`
	Name         string `form:"name" binding:"required"`
	Capacity     int    `form:"capacity" binding:"required,gte=1"`
}

type UpdateVipRoomRequest struct {
	Name     *string `form:"name" json:"name"`
	Capacity *int    `form:"capacity" json:"capacity" binding:"omitempty,gte=1"`
}

// POST /api/v1/vip-rooms/create
func (ctrl *VipRoomController) Create(c *gin.Context) {
	const location = "vip_room.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateVipRoomRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	images, err := formFiles(c, "images")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	room, err := ctrl.vipRoomService.Create(c.Request.Context(), userID, req.RestaurantID, req.Name, req.Capacity, images)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Created(c, "VIP room created", room)
}

// Update edits a VIP room; sending images replaces the whole set
// PATCH /api/v1/vip-rooms/update/:id
func (ctrl *VipRoomController) Update(c *gin.Context) {
	const location = "vip_room.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateVipRoomRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	images, err := formFiles(c, "images")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	room, err := ctrl.vipRoomService.Update(c.Request.Context(), userID, roomID, req.Name, req.Capacity, images)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "VIP room updated", room)
}

// DELETE /api/v1/vip-rooms/delete/:id
func (ctrl *VipRoomController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.cascade.DeleteVipRoom(c.Request.Context(), userID, roomID); err != nil {
		respondError(c, err, "vip_room.delete")
		return
	}
	response.OK(c, "VIP room deleted", nil)
}

// GET /api/v1/vip-rooms/restaurant/:restaurantId
func (ctrl *VipRoomController) ListByRestaurant(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	p := pagination(c)
	rooms, total, err := ctrl.vipRoomService.ListByRestaurant(c.Request.Context(), restaurantID, p)
	if err != nil {
		respondError(c, err, "vip_room.list")
		return
	}
	response.Paginated(c, "VIP rooms fetched", rooms, p, total)
}

// GET /api/v1/vip-rooms/:id
func (ctrl *VipRoomController) GetByID(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.vipRoomService.GetByID(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err, "vip_room.get")
		return
	}
	response.OK(c, "VIP room fetched", room)
}
