package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type RestaurantController struct {
	restaurantService service.RestaurantService
	cascade           service.CascadeService
}

func NewRestaurantController(restaurantService service.RestaurantService, cascade service.CascadeService) *RestaurantController {
	return &RestaurantController{
		restaurantService: restaurantService,
		cascade:           cascade,
	}
}

type CreateRestaurantRequest struct {
	Name         string   `form:"name" binding:"required"`
	Address      string   `form:"address" binding:"required"`
	Phone        string   `form:"phone" binding:"required"`
	OpeningHours string   `form:"opening_hours"`
	Description  string   `form:"description"`
	Categories   []string `form:"categories" binding:"required"`
}

type UpdateRestaurantRequest struct {
	Name         *string  `form:"name" json:"name"`
	Address      *string  `form:"address" json:"address"`
	Phone        *string  `form:"phone" json:"phone"`
	OpeningHours *string  `form:"opening_hours" json:"opening_hours"`
	Description  *string  `form:"description" json:"description"`
	Categories   []string `form:"categories" json:"categories"`
}

func restaurantUploads(c *gin.Context) (service.RestaurantUploads, error) {
	var uploads service.RestaurantUploads
	var err error
	if uploads.Profile, err = formFile(c, "profileImage"); err != nil {
		return uploads, err
	}
	if uploads.Layout, err = formFile(c, "layoutImage"); err != nil {
		return uploads, err
	}
	uploads.Gallery, err = formFiles(c, "galleryImages")
	return uploads, err
}

// Create registers the caller's restaurant
// POST /api/v1/restaurants/create
func (ctrl *RestaurantController) Create(c *gin.Context) {
	const location = "restaurant.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Expected a multipart form", location)
		return
	}
	var req CreateRestaurantRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	uploads, err := restaurantUploads(c)
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	restaurant, err := ctrl.restaurantService.Create(c.Request.Context(), userID, service.RestaurantInput{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		OpeningHours: req.OpeningHours,
		Description:  req.Description,
		Categories:   splitList(req.Categories),
	}, uploads)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Created(c, "Restaurant created", restaurant)
}

// Update edits the caller's restaurant; any image sent replaces the stored one
// PUT /api/v1/restaurants/update/:id
func (ctrl *RestaurantController) Update(c *gin.Context) {
	const location = "restaurant.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateRestaurantRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	uploads, err := restaurantUploads(c)
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	restaurant, err := ctrl.restaurantService.Update(c.Request.Context(), userID, restaurantID, service.RestaurantPatch{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		OpeningHours: req.OpeningHours,
		Description:  req.Description,
		Categories:   splitList(req.Categories),
	}, uploads)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Restaurant updated", restaurant)
}

// Delete removes the restaurant with every dependent record
// DELETE /api/v1/restaurants/:id
func (ctrl *RestaurantController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.cascade.DeleteRestaurant(c.Request.Context(), userID, restaurantID); err != nil {
		respondError(c, err, "restaurant.delete")
		return
	}
	response.OK(c, "Restaurant deleted", nil)
}

// List filters restaurants by name, address, category and minimum rating
// GET /api/v1/restaurants
func (ctrl *RestaurantController) List(c *gin.Context) {
	query := repository.RestaurantQuery{
		Name:       c.Query("name"),
		Address:    c.Query("address"),
		Categories: splitList(c.QueryArray("category")),
	}
	if raw := c.Query("avgRating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "avgRating must be a number", "restaurant.list")
			return
		}
		query.MinRating = rating
	}
	ctrl.list(c, query, "restaurant.list")
}

// Search matches restaurants having any of the given categories
// GET /api/v1/restaurants/search?categories=a,b
func (ctrl *RestaurantController) Search(c *gin.Context) {
	ctrl.list(c, repository.RestaurantQuery{Categories: splitList(c.QueryArray("categories"))}, "restaurant.search")
}

func (ctrl *RestaurantController) list(c *gin.Context, query repository.RestaurantQuery, location string) {
	p := pagination(c)
	restaurants, total, err := ctrl.restaurantService.List(c.Request.Context(), query, p)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Paginated(c, "Restaurants fetched", restaurants, p, total)
}

// GET /api/v1/restaurants/owner/:ownerId
func (ctrl *RestaurantController) GetByOwner(c *gin.Context) {
	ownerID, ok := parseID(c, "ownerId")
	if !ok {
		return
	}
	restaurant, err := ctrl.restaurantService.GetByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err, "restaurant.get_by_owner")
		return
	}
	response.OK(c, "Restaurant fetched", restaurant)
}

// GET /api/v1/restaurants/:id
func (ctrl *RestaurantController) GetByID(c *gin.Context) {
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return
	}
	restaurant, err := ctrl.restaurantService.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err, "restaurant.get")
		return
	}
	response.OK(c, "Restaurant fetched", restaurant)
}
