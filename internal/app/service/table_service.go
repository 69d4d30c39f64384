package service

import (
	"context"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/pkg/logger"
)

type TableService interface {
	Create(ctx context.Context, ownerID, restaurantID uint, number, capacity int) (*model.Table, error)
	Update(ctx context.Context, ownerID, tableID uint, number, capacity *int) (*model.Table, error)
	GetByID(ctx context.Context, tableID uint) (*model.Table, error)
	ListByRestaurant(ctx context.Context, restaurantID uint) ([]model.Table, error)
}

type tableService struct {
	store *repository.Store
}

func NewTableService(store *repository.Store) TableService {
	return &tableService{store: store}
}

func validateTable(number, capacity int) error {
	if number < 1 {
		return apperrors.Validation(apperrors.ValidationInvalidInput, "Table number must be positive")
	}
	if capacity < 1 {
		return apperrors.Validation(apperrors.ValidationInvalidInput, "Capacity must be at least 1")
	}
	return nil
}

func (s *tableService) Create(ctx context.Context, ownerID, restaurantID uint, number, capacity int) (*model.Table, error) {
	if err := validateTable(number, capacity); err != nil {
		return nil, err
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, restaurantID, false); err != nil {
		return nil, err
	}

	table := &model.Table{
		RestaurantID: restaurantID,
		TableNumber:  number,
		Capacity:     capacity,
		Status:       model.TableAvailable,
	}
	if err := s.store.Tables.Insert(ctx, table); err != nil {
		return nil, constraintAs(err, ErrTableNumberTaken)
	}

	logger.Info("Table created", map[string]interface{}{
		"table_id":      table.ID,
		"restaurant_id": restaurantID,
		"table_number":  number,
	})
	return table, nil
}

func (s *tableService) Update(ctx context.Context, ownerID, tableID uint, number, capacity *int) (*model.Table, error) {
	table, err := s.store.Tables.FindByID(ctx, tableID)
	if err != nil {
		return nil, notFoundAs(err, ErrTableNotFound)
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, table.RestaurantID, false); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if number != nil {
		table.TableNumber = *number
		patch["table_number"] = *number
	}
	if capacity != nil {
		table.Capacity = *capacity
		patch["capacity"] = *capacity
	}
	if err := validateTable(table.TableNumber, table.Capacity); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return table, nil
	}

	if err := s.store.Tables.UpdateByID(ctx, tableID, patch); err != nil {
		return nil, constraintAs(notFoundAs(err, ErrTableNotFound), ErrTableNumberTaken)
	}

	logger.Info("Table updated", map[string]interface{}{
		"table_id": tableID,
	})
	return s.GetByID(ctx, tableID)
}

func (s *tableService) GetByID(ctx context.Context, tableID uint) (*model.Table, error) {
	table, err := s.store.Tables.FindByID(ctx, tableID)
	if err != nil {
		return nil, notFoundAs(err, ErrTableNotFound)
	}
	return table, nil
}

func (s *tableService) ListByRestaurant(ctx context.Context, restaurantID uint) ([]model.Table, error) {
	if _, err := s.store.Restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}
	return s.store.Tables.FindMany(ctx, repository.Filter{"restaurant_id": restaurantID},
		repository.OrderBy("table_number ASC"))
}
