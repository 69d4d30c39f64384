package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/response"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	ReservationID uint   `json:"reservation_id" binding:"required"`
	Rate          int    `json:"rate"`
	Comment       string `json:"comment" binding:"max=1000"`
}

type UpdateReviewRequest struct {
	Rate    *int    `json:"rate"`
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}

// RestaurantReviewsResponse is the review listing with its rating summary.
type RestaurantReviewsResponse struct {
	*service.RestaurantReviews
	Pagination util.PageMeta `json:"pagination"`
}

// Create reviews a completed reservation
// POST /api/v1/reviews/create
func (ctrl *ReviewController) Create(c *gin.Context) {
	const location = "review.create"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), userID, req.ReservationID, req.Rate, req.Comment)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.Created(c, "Review created", review)
}

// PUT /api/v1/reviews/update/:id
func (ctrl *ReviewController) Update(c *gin.Context) {
	const location = "review.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), userID, reviewID, req.Rate, req.Comment)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Review updated", review)
}

// DELETE /api/v1/reviews/delete/:id
func (ctrl *ReviewController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		respondError(c, err, "review.delete")
		return
	}
	response.OK(c, "Review deleted", nil)
}

// ListByRestaurant pages reviews and reports the star histogram and stored average
// GET /api/v1/reviews/restaurant/:restaurantId
func (ctrl *ReviewController) ListByRestaurant(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	p := pagination(c)
	reviews, err := ctrl.reviewService.ListByRestaurant(c.Request.Context(), restaurantID, p)
	if err != nil {
		respondError(c, err, "review.list")
		return
	}
	response.OK(c, "Reviews fetched", RestaurantReviewsResponse{
		RestaurantReviews: reviews,
		Pagination:        p.Meta(reviews.Total),
	})
}
