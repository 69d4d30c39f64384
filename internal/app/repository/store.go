package repository

import (
	"context"
	"fmt"

	"github.com/tabletime/tabletime-backend/pkg/logger"
	"gorm.io/gorm"
)

// Store groups the per-kind repositories over one connection or one transaction.
type Store struct {
	db *gorm.DB

	Users          UserRepository
	Favorites      FavoriteRepository
	PasswordResets PasswordResetRepository
	Restaurants    RestaurantRepository
	Tables         TableRepository
	Meals          MealRepository
	VipRooms       VipRoomRepository
	Reservations   ReservationRepository
	Reviews        ReviewRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:             db,
		Users:          NewUserRepository(db),
		Favorites:      NewFavoriteRepository(db),
		PasswordResets: NewPasswordResetRepository(db),
		Restaurants:    NewRestaurantRepository(db),
		Tables:         NewTableRepository(db),
		Meals:          NewMealRepository(db),
		VipRooms:       NewVipRoomRepository(db),
		Reservations:   NewReservationRepository(db),
		Reviews:        NewReviewRepository(db),
	}
}

// DB exposes the underlying connection for migrations and ad hoc reads.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to one database transaction.
// fn's error rolls everything back; a panic rolls back and is re-raised.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) (err error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction", tx.Error)
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(NewStore(tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			logger.Error("Failed to roll back transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit transaction", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
