package repository

import (
	"context"
	"strings"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	EntityRepository[model.User]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	*entityRepository[model.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{entityRepository: newEntityRepository[model.User](db, "user")}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, r.translate("find_by_email", err, map[string]interface{}{"email": email})
	}
	return &user, nil
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, restaurantID uint) error
	Remove(ctx context.Context, userID, restaurantID uint) error
	RestaurantIDs(ctx context.Context, userID uint) ([]uint, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

type favoriteRepository struct {
	*entityRepository[model.Favorite]
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{entityRepository: newEntityRepository[model.Favorite](db, "favorite")}
}

// Add is idempotent.
func (r *favoriteRepository) Add(ctx context.Context, userID, restaurantID uint) error {
	fav := model.Favorite{UserID: userID, RestaurantID: restaurantID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error
	if err != nil {
		return r.translate("add", err, map[string]interface{}{"user_id": userID, "restaurant_id": restaurantID})
	}
	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, restaurantID uint) error {
	_, err := r.DeleteMany(ctx, Filter{"user_id": userID, "restaurant_id": restaurantID})
	return err
}

func (r *favoriteRepository) RestaurantIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, r.translate("list", err, map[string]interface{}{"user_id": userID})
	}
	return ids, nil
}

type PasswordResetRepository interface {
	EntityRepository[model.PasswordReset]
	FindByToken(ctx context.Context, token string) (*model.PasswordReset, error)
}

type passwordResetRepository struct {
	*entityRepository[model.PasswordReset]
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{entityRepository: newEntityRepository[model.PasswordReset](db, "password_reset")}
}

func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	logger.Debug("Finding password reset by token in database")

	var reset model.PasswordReset
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, r.translate("find_by_token", err, nil)
	}
	return &reset, nil
}
