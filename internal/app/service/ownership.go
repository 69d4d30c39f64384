package service

import (
	"context"
	"errors"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/pkg/logger"
)

// ReservationNotifier receives reservation changes after they are committed.
type ReservationNotifier interface {
	PublishReservation(event model.ReservationEvent)
}

type noopNotifier struct{}

func (noopNotifier) PublishReservation(model.ReservationEvent) {}

// ownedRestaurant loads a restaurant and checks that callerID owns it.
// With lock set the row stays locked until the transaction ends.
func ownedRestaurant(ctx context.Context, store *repository.Store, callerID, restaurantID uint, lock bool) (*model.Restaurant, error) {
	find := store.Restaurants.FindByID
	if lock {
		find = store.Restaurants.FindByIDForUpdate
	}
	restaurant, err := find(ctx, restaurantID)
	if err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}
	if restaurant.OwnerID != callerID {
		logger.Warn("Ownership check failed", map[string]interface{}{
			"restaurant_id": restaurantID,
			"caller_id":     callerID,
		})
		return nil, ErrNotRestaurantOwner
	}
	return restaurant, nil
}

// refreshTableStatus rewrites the table status hint from the reservation set.
func refreshTableStatus(ctx context.Context, store *repository.Store, tableIDs ...uint) error {
	for _, id := range tableIDs {
		active, err := store.Reservations.HasActiveForTable(ctx, id)
		if err != nil {
			return err
		}
		status := model.TableAvailable
		if active {
			status = model.TableReserved
		}
		err = store.Tables.UpdateByID(ctx, id, map[string]interface{}{"status": status})
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}
