package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
	"golang.org/x/sync/errgroup"
)

const MaxGalleryImages = 10

type RestaurantInput struct {
	Name         string
	Address      string
	Phone        string
	OpeningHours string
	Description  string
	Categories   []string
}

// RestaurantPatch updates a restaurant. Nil or empty fields are left unchanged.
type RestaurantPatch struct {
	Name         *string
	Address      *string
	Phone        *string
	OpeningHours *string
	Description  *string
	Categories   []string
}

// RestaurantUploads carries the optional image files of a create or update.
type RestaurantUploads struct {
	Profile *storage.File
	Layout  *storage.File
	Gallery []storage.File
}

type RestaurantService interface {
	Create(ctx context.Context, ownerID uint, input RestaurantInput, uploads RestaurantUploads) (*model.Restaurant, error)
	Update(ctx context.Context, ownerID, restaurantID uint, patch RestaurantPatch, uploads RestaurantUploads) (*model.Restaurant, error)
	GetByID(ctx context.Context, restaurantID uint) (*model.Restaurant, error)
	GetByOwner(ctx context.Context, ownerID uint) (*model.Restaurant, error)
	List(ctx context.Context, query repository.RestaurantQuery, p util.Pagination) ([]model.Restaurant, int64, error)
}

type restaurantService struct {
	store      *repository.Store
	assets     storage.AssetStore
	categories []string
}

// NewRestaurantService takes the allowed category table used to validate input.
func NewRestaurantService(store *repository.Store, assets storage.AssetStore, categories []string) RestaurantService {
	return &restaurantService{
		store:      store,
		assets:     assets,
		categories: lo.Map(categories, func(c string, _ int) string { return strings.ToLower(c) }),
	}
}

func (s *restaurantService) normalizeCategories(categories []string) ([]string, error) {
	normalized := lo.Uniq(lo.FilterMap(categories, func(c string, _ int) (string, bool) {
		c = strings.ToLower(strings.TrimSpace(c))
		return c, c != ""
	}))
	if len(normalized) == 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidCategory, "At least one category is required")
	}
	if invalid := lo.Without(normalized, s.categories...); len(invalid) > 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidCategory,
			fmt.Sprintf("Invalid categories: %s", strings.Join(invalid, ", ")))
	}
	return normalized, nil
}

// uploadedImages holds what uploadAll pushed to the asset host.
type uploadedImages struct {
	profile model.Image
	layout  model.Image
	gallery []model.Image
}

func (u uploadedImages) all() []model.Image {
	return append([]model.Image{u.profile, u.layout}, u.gallery...)
}

func (s *restaurantService) uploadAll(ctx context.Context, uploads RestaurantUploads) (uploadedImages, error) {
	var out uploadedImages
	g, gctx := errgroup.WithContext(ctx)
	if uploads.Profile != nil {
		g.Go(func() error {
			img, err := s.assets.Upload(gctx, *uploads.Profile, storage.FolderRestaurantProfile)
			out.profile = img
			return err
		})
	}
	if uploads.Layout != nil {
		g.Go(func() error {
			img, err := s.assets.Upload(gctx, *uploads.Layout, storage.FolderRestaurantLayout)
			out.layout = img
			return err
		})
	}
	if len(uploads.Gallery) > 0 {
		g.Go(func() error {
			images, err := storage.UploadAll(gctx, s.assets, uploads.Gallery, storage.FolderRestaurantGallery)
			out.gallery = images
			return err
		})
	}
	if err := g.Wait(); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, out.all())
		return uploadedImages{}, uploadError(err)
	}
	return out, nil
}

// uploadError classifies asset store failures caused by the file itself.
func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrUnsupportedFormat), errors.Is(err, storage.ErrUploadsDisabled):
		return apperrors.Validation(apperrors.ValidationInvalidFile, err.Error())
	default:
		logger.Error("Image upload failed", err)
		return apperrors.New(apperrors.KindInternal, apperrors.InternalExternalAPI, "Image upload failed")
	}
}

func (s *restaurantService) Create(ctx context.Context, ownerID uint, input RestaurantInput, uploads RestaurantUploads) (*model.Restaurant, error) {
	categories, err := s.normalizeCategories(input.Categories)
	if err != nil {
		return nil, err
	}
	if uploads.Profile == nil || uploads.Layout == nil {
		return nil, apperrors.Validation(apperrors.ValidationInvalidFile, "Profile and layout images are required")
	}
	if len(uploads.Gallery) > MaxGalleryImages {
		return nil, ErrTooManyImages
	}

	owner, err := s.store.Users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	if owner.Role != model.RoleRestaurantOwner {
		return nil, ErrOwnerRoleRequired
	}
	if _, err := s.store.Restaurants.FindByOwner(ctx, ownerID); err == nil {
		return nil, ErrRestaurantExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	logger.Info("Creating restaurant", map[string]interface{}{
		"owner_id": ownerID,
		"name":     input.Name,
	})

	images, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	restaurant := &model.Restaurant{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(input.Name),
		Address:       strings.TrimSpace(input.Address),
		Phone:         strings.TrimSpace(input.Phone),
		OpeningHours:  strings.TrimSpace(input.OpeningHours),
		Description:   input.Description,
		Categories:    categories,
		ProfileImage:  images.profile,
		LayoutImage:   images.layout,
		GalleryImages: images.gallery,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Restaurants.Insert(ctx, restaurant); err != nil {
			return constraintAs(err, ErrRestaurantExists)
		}
		return notFoundAs(
			tx.Users.UpdateByID(ctx, ownerID, map[string]interface{}{"restaurant_id": restaurant.ID}),
			ErrUserNotFound,
		)
	})
	if err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, images.all())
		return nil, err
	}

	logger.Info("Restaurant created", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"owner_id":      ownerID,
	})
	return restaurant, nil
}

func (s *restaurantService) Update(ctx context.Context, ownerID, restaurantID uint, patch RestaurantPatch, uploads RestaurantUploads) (*model.Restaurant, error) {
	var categories []string
	if patch.Categories != nil {
		var err error
		if categories, err = s.normalizeCategories(patch.Categories); err != nil {
			return nil, err
		}
	}
	if len(uploads.Gallery) > MaxGalleryImages {
		return nil, ErrTooManyImages
	}

	if _, err := ownedRestaurant(ctx, s.store, ownerID, restaurantID, false); err != nil {
		return nil, err
	}

	images, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	var replaced []model.Image
	var restaurant *model.Restaurant
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		restaurant, err = ownedRestaurant(ctx, tx, ownerID, restaurantID, true)
		if err != nil {
			return err
		}

		setIfPresent(&restaurant.Name, patch.Name)
		setIfPresent(&restaurant.Address, patch.Address)
		setIfPresent(&restaurant.Phone, patch.Phone)
		setIfPresent(&restaurant.OpeningHours, patch.OpeningHours)
		if patch.Description != nil {
			restaurant.Description = *patch.Description
		}
		if categories != nil {
			restaurant.Categories = categories
		}
		if uploads.Profile != nil {
			replaced = append(replaced, restaurant.ProfileImage)
			restaurant.ProfileImage = images.profile
		}
		if uploads.Layout != nil {
			replaced = append(replaced, restaurant.LayoutImage)
			restaurant.LayoutImage = images.layout
		}
		if len(uploads.Gallery) > 0 {
			replaced = append(replaced, restaurant.GalleryImages...)
			restaurant.GalleryImages = images.gallery
		}

		return tx.Restaurants.Save(ctx, restaurant)
	})
	if err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, images.all())
		return nil, err
	}

	storage.DestroyBestEffort(ctx, s.assets, replaced)

	logger.Info("Restaurant updated", map[string]interface{}{
		"restaurant_id":   restaurantID,
		"replaced_images": len(model.CollectImages(replaced...)),
	})
	return restaurant, nil
}

// setIfPresent assigns a trimmed non-empty value.
func setIfPresent(dst *string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		*dst = v
	}
}

func (s *restaurantService) GetByID(ctx context.Context, restaurantID uint) (*model.Restaurant, error) {
	restaurant, err := s.store.Restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}
	return restaurant, nil
}

func (s *restaurantService) GetByOwner(ctx context.Context, ownerID uint) (*model.Restaurant, error) {
	restaurant, err := s.store.Restaurants.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}
	return restaurant, nil
}

func (s *restaurantService) List(ctx context.Context, query repository.RestaurantQuery, p util.Pagination) ([]model.Restaurant, int64, error) {
	query.Categories = lo.Uniq(lo.FilterMap(query.Categories, func(c string, _ int) (string, bool) {
		c = strings.ToLower(strings.TrimSpace(c))
		return c, c != ""
	}))
	return s.store.Restaurants.List(ctx, query, p)
}
