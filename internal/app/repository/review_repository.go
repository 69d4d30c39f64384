package repository

import (
	"context"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/util"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	EntityRepository[model.Review]
	ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) ([]model.Review, int64, error)
	Histogram(ctx context.Context, restaurantID uint) (model.RatingHistogram, error)
	RestaurantIDs(ctx context.Context, filter Filter) ([]uint, error)
}

type reviewRepository struct {
	*entityRepository[model.Review]
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{entityRepository: newEntityRepository[model.Review](db, "review")}
}

func (r *reviewRepository) ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) ([]model.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Review{}).Where("restaurant_id = ?", restaurantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.translate("count", err, map[string]interface{}{"restaurant_id": restaurantID})
	}

	var reviews []model.Review
	err := query.Order("created_at DESC, id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, r.translate("list", err, map[string]interface{}{"restaurant_id": restaurantID})
	}
	return reviews, total, nil
}

// Histogram counts reviews per rate; every star value is present in the result.
func (r *reviewRepository) Histogram(ctx context.Context, restaurantID uint) (model.RatingHistogram, error) {
	var rows []struct {
		Rate  int
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("rate, COUNT(*) AS count").
		Where("restaurant_id = ?", restaurantID).
		Group("rate").
		Scan(&rows).Error
	if err != nil {
		return nil, r.translate("histogram", err, map[string]interface{}{"restaurant_id": restaurantID})
	}

	hist := model.RatingHistogram{}
	for rate := model.MinRate; rate <= model.MaxRate; rate++ {
		hist[rate] = 0
	}
	for _, row := range rows {
		hist[row.Rate] = row.Count
	}
	return hist, nil
}

// RestaurantIDs returns the distinct restaurants touched by the matching reviews.
func (r *reviewRepository) RestaurantIDs(ctx context.Context, filter Filter) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where(map[string]interface{}(filter)).
		Distinct().
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, r.translate("restaurant_ids", err, map[string]interface{}{"filter": filter})
	}
	return ids, nil
}
