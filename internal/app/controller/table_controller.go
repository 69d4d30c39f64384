package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type TableController struct {
	tableService service.TableService
	cascade      service.CascadeService
}

func NewTableController(tableService service.TableService, cascade service.CascadeService) *TableController {
	return &TableController{
		tableService: tableService,
		cascade:      cascade,
	}
}

type CreateTableRequest struct {
	RestaurantID uint `json:"restaurant_id" binding:"required"`
	TableNumber  int  `json:"table_number" binding:"required,gte=1"`
	Capacity     int  `json:"capacity" binding:"required,gte=1"`
}

type UpdateTableRequest struct {
	TableNumber *int `json:"table_number" binding:"omitempty,gte=1"`
	Capacity    *int `json:"capacity" binding:"omitempty,gte=1"`
}

// POST /api/v1/tables/create
func (ctrl *TableController) Create(c *gin.Context) {
	const location = "table.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateTableRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	table, err := ctrl.tableService.Create(c.Request.Context(), userID, req.RestaurantID, req.TableNumber, req.Capacity)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Created(c, "Table created", table)
}

// PUT /api/v1/tables/update/:id
func (ctrl *TableController) Update(c *gin.Context) {
	const location = "table.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tableID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTableRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	table, err := ctrl.tableService.Update(c.Request.Context(), userID, tableID, req.TableNumber, req.Capacity)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Table updated", table)
}

// Delete refuses tables that still have reservations
// DELETE /api/v1/tables/delete/:id
func (ctrl *TableController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tableID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.cascade.DeleteTable(c.Request.Context(), userID, tableID); err != nil {
		respondError(c, err, "table.delete")
		return
	}
	response.OK(c, "Table deleted", nil)
}

// GET /api/v1/tables/restaurant/:restaurantId
func (ctrl *TableController) ListByRestaurant(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	tables, err := ctrl.tableService.ListByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err, "table.list")
		return
	}
	response.OK(c, "Tables fetched", tables)
}

// GET /api/v1/tables/:id
func (ctrl *TableController) GetByID(c *gin.Context) {
	tableID, ok := parseID(c, "id")
	if !ok {
		return
	}
	table, err := ctrl.tableService.GetByID(c.Request.Context(), tableID)
	if err != nil {
		respondError(c, err, "table.get")
		return
	}
	response.OK(c, "Table fetched", table)
}
