package service

import (
	"context"
	"strings"
	"time"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

const (
	featuredWindow = 7 * 24 * time.Hour
	featuredLimit  = 10
)

type MealInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

type MealPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
}

type MealService interface {
	Create(ctx context.Context, ownerID, restaurantID uint, input MealInput, image *storage.File) (*model.Meal, error)
	Update(ctx context.Context, ownerID, mealID uint, patch MealPatch, image *storage.File) (*model.Meal, error)
	GetByID(ctx context.Context, mealID uint) (*model.Meal, error)
	ListByRestaurant(ctx context.Context, restaurantID uint, search string, p util.Pagination) ([]model.Meal, int64, error)
	Featured(ctx context.Context) ([]model.FeaturedMeal, error)
}

type mealService struct {
	store  *repository.Store
	assets storage.AssetStore
	now    func() time.Time
}

func NewMealService(store *repository.Store, assets storage.AssetStore) MealService {
	return &mealService{store: store, assets: assets, now: time.Now}
}

func (s *mealService) upload(ctx context.Context, file *storage.File) (model.Image, error) {
	if file == nil {
		return model.Image{}, nil
	}
	img, err := s.assets.Upload(ctx, *file, storage.FolderMeal)
	if err != nil {
		return model.Image{}, uploadError(err)
	}
	return img, nil
}

func (s *mealService) Create(ctx context.Context, ownerID, restaurantID uint, input MealInput, image *storage.File) (*model.Meal, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Meal name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Price must not be negative")
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, restaurantID, false); err != nil {
		return nil, err
	}

	img, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	meal := &model.Meal{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Price:        input.Price,
		Category:     strings.ToLower(strings.TrimSpace(input.Category)),
		Image:        img,
	}
	if err := s.store.Meals.Insert(ctx, meal); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, []model.Image{img})
		return nil, err
	}

	logger.Info("Meal created", map[string]interface{}{
		"meal_id":       meal.ID,
		"restaurant_id": restaurantID,
	})
	return meal, nil
}

func (s *mealService) Update(ctx context.Context, ownerID, mealID uint, patch MealPatch, image *storage.File) (*model.Meal, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Price must not be negative")
	}

	meal, err := s.store.Meals.FindByID(ctx, mealID)
	if err != nil {
		return nil, notFoundAs(err, ErrMealNotFound)
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, meal.RestaurantID, false); err != nil {
		return nil, err
	}

	img, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	setIfPresent(&meal.Name, patch.Name)
	if patch.Description != nil {
		meal.Description = *patch.Description
	}
	if patch.Price != nil {
		meal.Price = *patch.Price
	}
	if patch.Category != nil {
		meal.Category = strings.ToLower(strings.TrimSpace(*patch.Category))
	}
	replaced := model.Image{}
	if image != nil {
		replaced = meal.Image
		meal.Image = img
	}

	if err := s.store.Meals.Save(ctx, meal); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, []model.Image{img})
		return nil, err
	}
	storage.DestroyBestEffort(ctx, s.assets, []model.Image{replaced})

	logger.Info("Meal updated", map[string]interface{}{
		"meal_id": mealID,
	})
	return meal, nil
}

func (s *mealService) GetByID(ctx context.Context, mealID uint) (*model.Meal, error) {
	meal, err := s.store.Meals.FindByID(ctx, mealID)
	if err != nil {
		return nil, notFoundAs(err, ErrMealNotFound)
	}
	return meal, nil
}

func (s *mealService) ListByRestaurant(ctx context.Context, restaurantID uint, search string, p util.Pagination) ([]model.Meal, int64, error) {
	if _, err := s.store.Restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, 0, notFoundAs(err, ErrRestaurantNotFound)
	}
	return s.store.Meals.Search(ctx, restaurantID, strings.TrimSpace(search), p)
}

// Featured ranks meals by quantity reserved over the last week.
func (s *mealService) Featured(ctx context.Context) ([]model.FeaturedMeal, error) {
	return s.store.Meals.Featured(ctx, s.now().Add(-featuredWindow), featuredLimit)
}
