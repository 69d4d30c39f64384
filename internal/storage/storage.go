package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tabletime/tabletime-backend/config"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Folders used for uploaded images.
const (
	FolderRestaurantProfile = "Restaurant/restaurantProfileImages"
	FolderRestaurantLayout  = "Restaurant/restaurantLayoutImages"
	FolderRestaurantGallery = "Restaurant/restaurantGalleryImages"
	FolderMeal              = "Restaurant/mealImages"
	FolderVipRoom           = "Restaurant/vipRoomImages"
	FolderUser              = "Users/profileImages"
)

const (
	MaxImageSize       = 5 * 1024 * 1024
	destroyConcurrency = 4
)

var (
	ErrUploadsDisabled   = errors.New("image uploads are disabled")
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// File is an uploaded file ready to be pushed to the asset host.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AssetStore hosts images remotely.
type AssetStore interface {
	Upload(ctx context.Context, file File, folder string) (model.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

// New builds the asset store selected by configuration.
func New(ctx context.Context, cfg config.AssetConfig) (AssetStore, error) {
	switch strings.ToLower(cfg.Provider) {
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "none", "":
		logger.Warn("Asset store disabled, image uploads will be rejected")
		return DisabledStore{}, nil
	default:
		return nil, fmt.Errorf("unknown asset provider %q", cfg.Provider)
	}
}

// ValidateImage checks size and content type before an upload.
func ValidateImage(f File) error {
	if f.Size > MaxImageSize {
		return ErrFileTooLarge
	}
	for _, allowed := range allowedImageTypes {
		if f.ContentType == allowed {
			return nil
		}
	}
	return ErrUnsupportedFormat
}

// DestroyBestEffort removes remote images concurrently. Failures are logged and swallowed:
// an orphaned remote image is acceptable, a failed request is not.
func DestroyBestEffort(ctx context.Context, store AssetStore, images []model.Image) {
	images = model.CollectImages(images...)
	if store == nil || len(images) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(destroyConcurrency)
	for _, img := range images {
		publicID := img.PublicID
		g.Go(func() error {
			if err := store.Destroy(gctx, publicID); err != nil {
				logger.Warn("Failed to destroy remote image", map[string]interface{}{
					"public_id": publicID,
					"error":     err.Error(),
				})
			}
			return nil
		})
	}
	_ = g.Wait()
}

// UploadAll uploads files concurrently into one folder, preserving order.
// On failure every image already uploaded is destroyed.
func UploadAll(ctx context.Context, store AssetStore, files []File, folder string) ([]model.Image, error) {
	images := make([]model.Image, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(destroyConcurrency)
	for i, f := range files {
		g.Go(func() error {
			img, err := store.Upload(gctx, f, folder)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		DestroyBestEffort(context.WithoutCancel(ctx), store, images)
		return nil, err
	}
	return images, nil
}

// DisabledStore rejects uploads and ignores destroys.
type DisabledStore struct{}

func (DisabledStore) Upload(context.Context, File, string) (model.Image, error) {
	return model.Image{}, ErrUploadsDisabled
}

func (DisabledStore) Destroy(context.Context, string) error {
	return nil
}
