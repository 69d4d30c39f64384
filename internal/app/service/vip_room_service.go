package service

import (
	"context"
	"strings"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

const MaxVipRoomImages = 5

type VipRoomService interface {
	Create(ctx context.Context, ownerID, restaurantID uint, name string, capacity int, images []storage.File) (*model.VipRoom, error)
	Update(ctx context.Context, ownerID, roomID uint, name *string, capacity *int, images []storage.File) (*model.VipRoom, error)
	GetByID(ctx context.Context, roomID uint) (*model.VipRoom, error)
	ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) ([]model.VipRoom, int64, error)
}

type vipRoomService struct {
	store  *repository.Store
	assets storage.AssetStore
}

func NewVipRoomService(store *repository.Store, assets storage.AssetStore) VipRoomService {
	return &vipRoomService{store: store, assets: assets}
}

func (s *vipRoomService) uploadImages(ctx context.Context, files []storage.File) ([]model.Image, error) {
	if len(files) > MaxVipRoomImages {
		return nil, ErrTooManyImages
	}
	if len(files) == 0 {
		return nil, nil
	}
	images, err := storage.UploadAll(ctx, s.assets, files, storage.FolderVipRoom)
	if err != nil {
		return nil, uploadError(err)
	}
	return images, nil
}

func (s *vipRoomService) Create(ctx context.Context, ownerID, restaurantID uint, name string, capacity int, files []storage.File) (*model.VipRoom, error) {
	if strings.TrimSpace(name) == "" || capacity < 1 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Name and a capacity of at least 1 are required")
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, restaurantID, false); err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	room := &model.VipRoom{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(name),
		Capacity:     capacity,
		Images:       images,
	}
	if err := s.store.VipRooms.Insert(ctx, room); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, images)
		return nil, err
	}

	logger.Info("VIP room created", map[string]interface{}{
		"vip_room_id":   room.ID,
		"restaurant_id": restaurantID,
	})
	return room, nil
}

func (s *vipRoomService) Update(ctx context.Context, ownerID, roomID uint, name *string, capacity *int, files []storage.File) (*model.VipRoom, error) {
	if capacity != nil && *capacity < 1 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Capacity must be at least 1")
	}

	room, err := s.store.VipRooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, ErrVipRoomNotFound)
	}
	if _, err := ownedRestaurant(ctx, s.store, ownerID, room.RestaurantID, false); err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	setIfPresent(&room.Name, name)
	if capacity != nil {
		room.Capacity = *capacity
	}
	var replaced []model.Image
	if len(images) > 0 {
		replaced = room.Images
		room.Images = images
	}

	if err := s.store.VipRooms.Save(ctx, room); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, images)
		return nil, err
	}
	storage.DestroyBestEffort(ctx, s.assets, replaced)

	logger.Info("VIP room updated", map[string]interface{}{
		"vip_room_id": roomID,
	})
	return room, nil
}

func (s *vipRoomService) GetByID(ctx context.Context, roomID uint) (*model.VipRoom, error) {
	room, err := s.store.VipRooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, ErrVipRoomNotFound)
	}
	return room, nil
}

func (s *vipRoomService) ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) ([]model.VipRoom, int64, error) {
	if _, err := s.store.Restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, 0, notFoundAs(err, ErrRestaurantNotFound)
	}
	filter := repository.Filter{"restaurant_id": restaurantID}
	total, err := s.store.VipRooms.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	rooms, err := s.store.VipRooms.FindMany(ctx, filter, repository.OrderBy("id ASC"), repository.Paginate(p))
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}
