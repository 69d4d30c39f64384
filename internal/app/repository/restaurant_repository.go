package repository

import (
	"context"
	"strings"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
	"gorm.io/gorm"
)

// RestaurantQuery holds the optional list filters.
type RestaurantQuery struct {
	Name       string
	Address    string
	Categories []string // any match
	MinRating  float64
}

type RestaurantRepository interface {
	EntityRepository[model.Restaurant]
	FindByOwner(ctx context.Context, ownerID uint) (*model.Restaurant, error)
	List(ctx context.Context, q RestaurantQuery, p util.Pagination) ([]model.Restaurant, int64, error)
	RecomputeAvgRating(ctx context.Context, restaurantID uint) (float64, error)
}

type restaurantRepository struct {
	*entityRepository[model.Restaurant]
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{entityRepository: newEntityRepository[model.Restaurant](db, "restaurant")}
}

func (r *restaurantRepository) FindByOwner(ctx context.Context, ownerID uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		return nil, r.translate("find_by_owner", err, map[string]interface{}{"owner_id": ownerID})
	}
	return &restaurant, nil
}

func (r *restaurantRepository) List(ctx context.Context, q RestaurantQuery, p util.Pagination) ([]model.Restaurant, int64, error) {
	logger.Debug("Listing restaurants", map[string]interface{}{
		"name":       q.Name,
		"address":    q.Address,
		"categories": q.Categories,
		"min_rating": q.MinRating,
		"page":       p.Page,
	})

	query := r.db.WithContext(ctx).Model(&model.Restaurant{})
	if q.Name != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(q.Name))
	}
	if q.Address != "" {
		query = query.Where(`LOWER(address) LIKE ? ESCAPE '\'`, containsPattern(q.Address))
	}
	if len(q.Categories) > 0 {
		// categories is a JSON array column, match on the quoted element
		cond := r.db.Session(&gorm.Session{NewDB: true})
		for i, c := range q.Categories {
			pattern := `%"` + c + `"%`
			if i == 0 {
				cond = cond.Where("categories LIKE ?", pattern)
			} else {
				cond = cond.Or("categories LIKE ?", pattern)
			}
		}
		query = query.Where(cond)
	}
	if q.MinRating > 0 {
		query = query.Where("avg_rating >= ?", q.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.translate("count", err, nil)
	}

	var restaurants []model.Restaurant
	err := query.Order("avg_rating DESC, id ASC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&restaurants).Error
	if err != nil {
		return nil, 0, r.translate("list", err, nil)
	}
	return restaurants, total, nil
}

// RecomputeAvgRating sets avg_rating from the live review rows.
// The restaurant row is locked by its own statement first, so the aggregate
// runs on a snapshot taken after any competing review writer has committed.
// Call it inside a transaction.
func (r *restaurantRepository) RecomputeAvgRating(ctx context.Context, restaurantID uint) (float64, error) {
	if _, err := r.FindByIDForUpdate(ctx, restaurantID); err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)

	avg := db.Model(&model.Review{}).
		Select("COALESCE(AVG(rate), 0)").
		Where("restaurant_id = ?", restaurantID)

	result := db.Model(&model.Restaurant{}).Where("id = ?", restaurantID).Update("avg_rating", avg)
	if result.Error != nil {
		return 0, r.translate("recompute_rating", result.Error, map[string]interface{}{"restaurant_id": restaurantID})
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var value float64
	if err := db.Model(&model.Restaurant{}).Select("avg_rating").Where("id = ?", restaurantID).Scan(&value).Error; err != nil {
		return 0, r.translate("recompute_rating", err, map[string]interface{}{"restaurant_id": restaurantID})
	}

	logger.Debug("Average rating recomputed", map[string]interface{}{
		"restaurant_id": restaurantID,
		"avg_rating":    value,
	})
	return value, nil
}

func containsPattern(s string) string {
	s = strings.NewReplacer("%", `\%`, "_", `\_`).Replace(strings.ToLower(s))
	return "%" + s + "%"
}
