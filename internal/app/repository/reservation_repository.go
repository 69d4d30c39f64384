package repository

import (
	"context"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	EntityRepository[model.Reservation]
	FindWithMeals(ctx context.Context, id uint) (*model.Reservation, error)
	ListWithMeals(ctx context.Context, filter Filter, opts ...QueryOption) ([]model.Reservation, error)
	FindSlotHolder(ctx context.Context, tableID uint, date, time string, excludeID uint) (*model.Reservation, error)
	ExistsForTable(ctx context.Context, tableID uint) (bool, error)
	ExistsForMeal(ctx context.Context, mealID uint) (bool, error)
	ReplaceMeals(ctx context.Context, reservationID uint, items []model.ReservationMeal) error
	DeleteWithMeals(ctx context.Context, filter Filter) (int64, error)
	HasActiveForTable(ctx context.Context, tableID uint) (bool, error)
}

type reservationRepository struct {
	*entityRepository[model.Reservation]
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{entityRepository: newEntityRepository[model.Reservation](db, "reservation")}
}

func orderedMeals(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *reservationRepository) FindWithMeals(ctx context.Context, id uint) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.WithContext(ctx).Preload("Meals", orderedMeals).First(&reservation, id).Error; err != nil {
		return nil, r.translate("find", err, map[string]interface{}{"id": id})
	}
	return &reservation, nil
}

func (r *reservationRepository) ListWithMeals(ctx context.Context, filter Filter, opts ...QueryOption) ([]model.Reservation, error) {
	return r.FindMany(ctx, filter, append([]QueryOption{Preload("Meals", orderedMeals)}, opts...)...)
}

// FindSlotHolder returns the reserved reservation occupying (table, date, time), ignoring excludeID.
func (r *reservationRepository) FindSlotHolder(ctx context.Context, tableID uint, date, time string, excludeID uint) (*model.Reservation, error) {
	logger.Debug("Checking reservation slot", map[string]interface{}{
		"table_id":   tableID,
		"date":       date,
		"time":       time,
		"exclude_id": excludeID,
	})

	query := r.db.WithContext(ctx).
		Where("table_id = ? AND date = ? AND time = ? AND status = ?", tableID, date, time, model.ReservationReserved)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var reservation model.Reservation
	if err := query.First(&reservation).Error; err != nil {
		return nil, r.translate("find_slot", err, map[string]interface{}{"table_id": tableID})
	}
	return &reservation, nil
}

// ExistsForTable counts reservations of any status.
func (r *reservationRepository) ExistsForTable(ctx context.Context, tableID uint) (bool, error) {
	n, err := r.Count(ctx, Filter{"table_id": tableID})
	return n > 0, err
}

func (r *reservationRepository) HasActiveForTable(ctx context.Context, tableID uint) (bool, error) {
	n, err := r.Count(ctx, Filter{"table_id": tableID, "status": model.ReservationReserved})
	return n > 0, err
}

// ExistsForMeal reports whether any reservation line item references the meal.
func (r *reservationRepository) ExistsForMeal(ctx context.Context, mealID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ReservationMeal{}).Where("meal_id = ?", mealID).Count(&n).Error; err != nil {
		return false, r.translate("meal_refs", err, map[string]interface{}{"meal_id": mealID})
	}
	return n > 0, nil
}

func (r *reservationRepository) ReplaceMeals(ctx context.Context, reservationID uint, items []model.ReservationMeal) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("reservation_id = ?", reservationID).Delete(&model.ReservationMeal{}).Error; err != nil {
		return r.translate("replace_meals", err, map[string]interface{}{"reservation_id": reservationID})
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].ReservationID = reservationID
	}
	if err := db.Create(&items).Error; err != nil {
		return r.translate("replace_meals", err, map[string]interface{}{"reservation_id": reservationID})
	}
	return nil
}

// DeleteWithMeals removes matching reservations together with their line items.
func (r *reservationRepository) DeleteWithMeals(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}
	db := r.db.WithContext(ctx)

	ids := db.Model(&model.Reservation{}).Select("id").Where(map[string]interface{}(filter))
	if err := db.Where("reservation_id IN (?)", ids).Delete(&model.ReservationMeal{}).Error; err != nil {
		return 0, r.translate("delete_meals", err, map[string]interface{}{"filter": filter})
	}
	return r.DeleteMany(ctx, filter)
}
