package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/logger"
)

// CascadeService removes parent entities together with everything that references them.
// Each delete runs in one transaction; remote images are destroyed after commit.
type CascadeService interface {
	DeleteRestaurant(ctx context.Context, callerID, restaurantID uint) error
	DeleteUser(ctx context.Context, callerID, userID uint) error
	// DeleteUserAsSystem deletes an account without a caller check, for administrative jobs.
	DeleteUserAsSystem(ctx context.Context, userID uint) error
	DeleteTable(ctx context.Context, callerID, tableID uint) error
	DeleteMeal(ctx context.Context, callerID, mealID uint) error
	DeleteVipRoom(ctx context.Context, callerID, roomID uint) error
}

type cascadeService struct {
	store  *repository.Store
	assets storage.AssetStore
}

func NewCascadeService(store *repository.Store, assets storage.AssetStore) CascadeService {
	return &cascadeService{store: store, assets: assets}
}

func (s *cascadeService) DeleteRestaurant(ctx context.Context, callerID, restaurantID uint) error {
	logger.Info("Deleting restaurant", map[string]interface{}{
		"restaurant_id": restaurantID,
		"caller_id":     callerID,
	})

	var images []model.Image
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		restaurant, err := ownedRestaurant(ctx, tx, callerID, restaurantID, true)
		if err != nil {
			return err
		}
		images, err = cascadeRestaurant(ctx, tx, restaurant)
		return err
	})
	if err != nil {
		logger.Error("Restaurant cascade failed", err, map[string]interface{}{
			"restaurant_id": restaurantID,
		})
		return err
	}

	storage.DestroyBestEffort(ctx, s.assets, images)

	logger.Info("Restaurant deleted", map[string]interface{}{
		"restaurant_id": restaurantID,
		"images":        len(images),
	})
	return nil
}

// cascadeRestaurant deletes every row that references the restaurant, then the restaurant itself.
// It returns the remote images that are now unreferenced.
func cascadeRestaurant(ctx context.Context, tx *repository.Store, restaurant *model.Restaurant) ([]model.Image, error) {
	byRestaurant := repository.Filter{"restaurant_id": restaurant.ID}

	meals, err := tx.Meals.FindMany(ctx, byRestaurant)
	if err != nil {
		return nil, err
	}
	rooms, err := tx.VipRooms.FindMany(ctx, byRestaurant)
	if err != nil {
		return nil, err
	}

	images := restaurant.Images()
	images = append(images, lo.Map(meals, func(m model.Meal, _ int) model.Image { return m.Image })...)
	for _, room := range rooms {
		images = append(images, room.Images...)
	}

	if _, err := tx.Reservations.DeleteWithMeals(ctx, byRestaurant); err != nil {
		return nil, err
	}
	if _, err := tx.Reviews.DeleteMany(ctx, byRestaurant); err != nil {
		return nil, err
	}
	if _, err := tx.Tables.DeleteMany(ctx, byRestaurant); err != nil {
		return nil, err
	}
	if _, err := tx.Meals.DeleteMany(ctx, byRestaurant); err != nil {
		return nil, err
	}
	if _, err := tx.VipRooms.DeleteMany(ctx, byRestaurant); err != nil {
		return nil, err
	}
	if _, err := tx.Favorites.DeleteMany(ctx, byRestaurant); err != nil {
		return nil, err
	}

	err = tx.Users.UpdateByID(ctx, restaurant.OwnerID, map[string]interface{}{"restaurant_id": nil})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err := tx.Restaurants.DeleteByID(ctx, restaurant.ID); err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}

	return model.CollectImages(images...), nil
}

func (s *cascadeService) DeleteUser(ctx context.Context, callerID, userID uint) error {
	if callerID == 0 || callerID != userID {
		return ErrNotAccountOwner
	}
	return s.deleteUser(ctx, userID)
}

func (s *cascadeService) DeleteUserAsSystem(ctx context.Context, userID uint) error {
	logger.Warn("System account deletion requested", map[string]interface{}{
		"user_id": userID,
	})
	return s.deleteUser(ctx, userID)
}

func (s *cascadeService) deleteUser(ctx context.Context, userID uint) error {
	logger.Info("Deleting user account", map[string]interface{}{
		"user_id": userID,
	})

	var images []model.Image
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		images = append(images, user.Image)

		var ownedID uint
		restaurant, err := tx.Restaurants.FindByOwner(ctx, userID)
		switch {
		case err == nil:
			ownedID = restaurant.ID
			restaurantImages, err := cascadeRestaurant(ctx, tx, restaurant)
			if err != nil {
				return err
			}
			images = append(images, restaurantImages...)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		byUser := repository.Filter{"user_id": userID}

		rated, err := tx.Reviews.RestaurantIDs(ctx, byUser)
		if err != nil {
			return err
		}
		if _, err := tx.Reviews.DeleteMany(ctx, byUser); err != nil {
			return err
		}

		active, err := tx.Reservations.FindMany(ctx, repository.Filter{
			"user_id": userID,
			"status":  model.ReservationReserved,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Reservations.DeleteWithMeals(ctx, byUser); err != nil {
			return err
		}

		for _, id := range lo.Without(rated, ownedID) {
			if _, err := tx.Restaurants.RecomputeAvgRating(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		tableIDs := lo.Uniq(lo.Map(active, func(r model.Reservation, _ int) uint { return r.TableID }))
		if err := refreshTableStatus(ctx, tx, tableIDs...); err != nil {
			return err
		}

		if _, err := tx.Favorites.DeleteMany(ctx, byUser); err != nil {
			return err
		}
		if _, err := tx.PasswordResets.DeleteMany(ctx, byUser); err != nil {
			return err
		}
		return tx.Users.DeleteByID(ctx, userID)
	})
	if err != nil {
		logger.Error("User cascade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return notFoundAs(err, ErrUserNotFound)
	}

	storage.DestroyBestEffort(ctx, s.assets, images)

	logger.Info("User account deleted", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *cascadeService) DeleteTable(ctx context.Context, callerID, tableID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		table, err := tx.Tables.FindByIDForUpdate(ctx, tableID)
		if err != nil {
			return notFoundAs(err, ErrTableNotFound)
		}
		if _, err := ownedRestaurant(ctx, tx, callerID, table.RestaurantID, false); err != nil {
			return err
		}

		referenced, err := tx.Reservations.ExistsForTable(ctx, tableID)
		if err != nil {
			return err
		}
		if referenced {
			logger.Warn("Table delete blocked by reservations", map[string]interface{}{
				"table_id": tableID,
			})
			return ErrTableHasReservations
		}

		if err := tx.Tables.DeleteByID(ctx, tableID); err != nil {
			return notFoundAs(err, ErrTableNotFound)
		}
		logger.Info("Table deleted", map[string]interface{}{
			"table_id":      tableID,
			"restaurant_id": table.RestaurantID,
		})
		return nil
	})
}

func (s *cascadeService) DeleteMeal(ctx context.Context, callerID, mealID uint) error {
	var image model.Image
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		meal, err := tx.Meals.FindByIDForUpdate(ctx, mealID)
		if err != nil {
			return notFoundAs(err, ErrMealNotFound)
		}
		if _, err := ownedRestaurant(ctx, tx, callerID, meal.RestaurantID, false); err != nil {
			return err
		}

		referenced, err := tx.Reservations.ExistsForMeal(ctx, mealID)
		if err != nil {
			return err
		}
		if referenced {
			logger.Warn("Meal delete blocked by reservations", map[string]interface{}{
				"meal_id": mealID,
			})
			return ErrMealHasReservations
		}

		image = meal.Image
		return notFoundAs(tx.Meals.DeleteByID(ctx, mealID), ErrMealNotFound)
	})
	if err != nil {
		return err
	}

	storage.DestroyBestEffort(ctx, s.assets, []model.Image{image})
	logger.Info("Meal deleted", map[string]interface{}{"meal_id": mealID})
	return nil
}

func (s *cascadeService) DeleteVipRoom(ctx context.Context, callerID, roomID uint) error {
	var images []model.Image
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		room, err := tx.VipRooms.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrVipRoomNotFound)
		}
		if _, err := ownedRestaurant(ctx, tx, callerID, room.RestaurantID, false); err != nil {
			return err
		}
		images = room.Images
		return notFoundAs(tx.VipRooms.DeleteByID(ctx, roomID), ErrVipRoomNotFound)
	})
	if err != nil {
		return err
	}

	storage.DestroyBestEffort(ctx, s.assets, images)
	logger.Info("VIP room deleted", map[string]interface{}{"vip_room_id": roomID})
	return nil
}
