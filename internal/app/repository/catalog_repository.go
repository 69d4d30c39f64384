package repository

import (
	"context"
	"time"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
	"gorm.io/gorm"
)

type TableRepository interface {
	EntityRepository[model.Table]
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return newEntityRepository[model.Table](db, "table")
}

type VipRoomRepository interface {
	EntityRepository[model.VipRoom]
}

func NewVipRoomRepository(db *gorm.DB) VipRoomRepository {
	return newEntityRepository[model.VipRoom](db, "vip_room")
}

type MealRepository interface {
	EntityRepository[model.Meal]
	Search(ctx context.Context, restaurantID uint, search string, p util.Pagination) ([]model.Meal, int64, error)
	Featured(ctx context.Context, since time.Time, limit int) ([]model.FeaturedMeal, error)
}

type mealRepository struct {
	*entityRepository[model.Meal]
}

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{entityRepository: newEntityRepository[model.Meal](db, "meal")}
}

func (r *mealRepository) Search(ctx context.Context, restaurantID uint, search string, p util.Pagination) ([]model.Meal, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Meal{}).Where("restaurant_id = ?", restaurantID)
	if search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.translate("count", err, map[string]interface{}{"restaurant_id": restaurantID})
	}

	var meals []model.Meal
	if err := query.Order("id ASC").Offset(p.Offset()).Limit(p.Limit).Find(&meals).Error; err != nil {
		return nil, 0, r.translate("search", err, map[string]interface{}{"restaurant_id": restaurantID})
	}
	return meals, total, nil
}

// Featured ranks meals by reserved quantity across reservations made since the given time.
func (r *mealRepository) Featured(ctx context.Context, since time.Time, limit int) ([]model.FeaturedMeal, error) {
	logger.Debug("Finding featured meals", map[string]interface{}{
		"since": since,
		"limit": limit,
	})

	var meals []model.FeaturedMeal
	err := r.db.WithContext(ctx).Model(&model.Meal{}).
		Select("meals.*, SUM(reservation_meals.quantity) AS total_quantity").
		Joins("JOIN reservation_meals ON reservation_meals.meal_id = meals.id").
		Joins("JOIN reservations ON reservations.id = reservation_meals.reservation_id").
		Where("reservations.created_at >= ?", since).
		Group("meals.id").
		Order("total_quantity DESC, meals.id ASC").
		Limit(limit).
		Scan(&meals).Error
	if err != nil {
		return nil, r.translate("featured", err, nil)
	}
	return meals, nil
}
