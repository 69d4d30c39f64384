package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type MealController struct {
	mealService service.MealService
	cascade     service.CascadeService
}

func NewMealController(mealService service.MealService, cascade service.CascadeService) *MealController {
	return &MealController{
		mealService: mealService,
		cascade:     cascade,
	}
}

type CreateMealRequest struct {
	RestaurantID uint    `form:"restaurant_id" json:"restaurant_id" binding:"required"`
	Name         string  `form:"name" json:"name" binding:"required"`
	Description  string  `form:"description" json:"description"`
	Price        float64 `form:"price" json:"price" binding:"gte=0"`
	Category     string  `form:"category" json:"category"`
}

type UpdateMealRequest struct {
	Name        *string  `form:"name" json:"name"`
	Description *string  `form:"description" json:"description"`
	Price       *float64 `form:"price" json:"price" binding:"omitempty,gte=0"`
	Category    *string  `form:"category" json:"category"`
}

// POST /api/v1/meals/create
func (ctrl *MealController) Create(c *gin.Context) {
	const location = "meal.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateMealRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	image, err := formFile(c, "image")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	meal, err := ctrl.mealService.Create(c.Request.Context(), userID, req.RestaurantID, service.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}, image)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Created(c, "Meal created", meal)
}

// PUT /api/v1/meals/update/:id
func (ctrl *MealController) Update(c *gin.Context) {
	const location = "meal.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateMealRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	image, err := formFile(c, "image")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	meal, err := ctrl.mealService.Update(c.Request.Context(), userID, mealID, service.MealPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}, image)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Meal updated", meal)
}

// Delete refuses meals referenced by reservations
// DELETE /api/v1/meals/delete/:id
func (ctrl *MealController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.cascade.DeleteMeal(c.Request.Context(), userID, mealID); err != nil {
		respondError(c, err, "meal.delete")
		return
	}
	response.OK(c, "Meal deleted", nil)
}

// Featured lists the most reserved meals of the last week
// GET /api/v1/meals/featured
func (ctrl *MealController) Featured(c *gin.Context) {
	meals, err := ctrl.mealService.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err, "meal.featured")
		return
	}
	response.OK(c, "Featured meals fetched", meals)
}

// GET /api/v1/meals/restaurant/:restaurantId?search=
func (ctrl *MealController) ListByRestaurant(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	p := pagination(c)
	meals, total, err := ctrl.mealService.ListByRestaurant(c.Request.Context(), restaurantID, c.Query("search"), p)
	if err != nil {
		respondError(c, err, "meal.list")
		return
	}
	response.Paginated(c, "Meals fetched", meals, p, total)
}

// GET /api/v1/meals/:id
func (ctrl *MealController) GetByID(c *gin.Context) {
	mealID, ok := parseID(c, "id")
	if !ok {
		return
	}
	meal, err := ctrl.mealService.GetByID(c.Request.Context(), mealID)
	if err != nil {
		respondError(c, err, "meal.get")
		return
	}
	response.OK(c, "Meal fetched", meal)
}
