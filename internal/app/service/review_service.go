package service

import (
	"context"
	"errors"

	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

// RestaurantReviews is one page of reviews with the restaurant's rating summary.
type RestaurantReviews struct {
	Reviews   []model.Review        `json:"reviews"`
	Total     int64                 `json:"-"`
	Histogram model.RatingHistogram `json:"histogram"`
	AvgRating float64               `json:"avg_rating"`
}

type ReviewService interface {
	Create(ctx context.Context, userID, reservationID uint, rate int, comment string) (*model.Review, error)
	Update(ctx context.Context, userID, reviewID uint, rate *int, comment *string) (*model.Review, error)
	Delete(ctx context.Context, userID, reviewID uint) error
	ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) (*RestaurantReviews, error)
}

type reviewService struct {
	store *repository.Store
}

func NewReviewService(store *repository.Store) ReviewService {
	return &reviewService{store: store}
}

func validRate(rate int) bool {
	return rate >= model.MinRate && rate <= model.MaxRate
}

// recomputeRating rewrites the restaurant average from the reviews visible to tx.
func recomputeRating(ctx context.Context, tx *repository.Store, restaurantID uint) error {
	avg, err := tx.Restaurants.RecomputeAvgRating(ctx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debug("Restaurant rating updated", map[string]interface{}{
		"restaurant_id": restaurantID,
		"avg_rating":    avg,
	})
	return nil
}

func (s *reviewService) Create(ctx context.Context, userID, reservationID uint, rate int, comment string) (*model.Review, error) {
	if !validRate(rate) {
		return nil, ErrInvalidRating
	}

	logger.Info("Creating review", map[string]interface{}{
		"user_id":        userID,
		"reservation_id": reservationID,
		"rate":           rate,
	})

	var review *model.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		reservation, err := tx.Reservations.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return notFoundAs(err, ErrReservationNotFound)
		}
		if reservation.UserID != userID {
			return ErrNotReservationUser
		}
		if reservation.Status != model.ReservationCompleted {
			return ErrReservationIncomplete
		}

		existing, err := tx.Reviews.Count(ctx, repository.Filter{"reservation_id": reservationID})
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrReviewExists
		}

		review = &model.Review{
			UserID:        userID,
			RestaurantID:  reservation.RestaurantID,
			ReservationID: reservationID,
			Rate:          rate,
			Comment:       comment,
		}
		if err := tx.Reviews.Insert(ctx, review); err != nil {
			return constraintAs(err, ErrReviewExists)
		}
		return recomputeRating(ctx, tx, reservation.RestaurantID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":     review.ID,
		"restaurant_id": review.RestaurantID,
	})
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, userID, reviewID uint, rate *int, comment *string) (*model.Review, error) {
	if rate != nil && !validRate(*rate) {
		return nil, ErrInvalidRating
	}

	var review *model.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reviews.FindByIDForUpdate(ctx, reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if current.UserID != userID {
			return ErrNotReviewAuthor
		}

		patch := map[string]interface{}{}
		if rate != nil {
			patch["rate"] = *rate
		}
		if comment != nil {
			patch["comment"] = *comment
		}
		if len(patch) > 0 {
			if err := tx.Reviews.UpdateByID(ctx, reviewID, patch); err != nil {
				return notFoundAs(err, ErrReviewNotFound)
			}
		}
		if rate != nil {
			if err := recomputeRating(ctx, tx, current.RestaurantID); err != nil {
				return err
			}
		}

		review, err = tx.Reviews.FindByID(ctx, reviewID)
		return notFoundAs(err, ErrReviewNotFound)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Review updated", map[string]interface{}{
		"review_id": reviewID,
	})
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		review, err := tx.Reviews.FindByIDForUpdate(ctx, reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if review.UserID != userID {
			return ErrNotReviewAuthor
		}
		if err := tx.Reviews.DeleteByID(ctx, reviewID); err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		return recomputeRating(ctx, tx, review.RestaurantID)
	})
	if err != nil {
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}

func (s *reviewService) ListByRestaurant(ctx context.Context, restaurantID uint, p util.Pagination) (*RestaurantReviews, error) {
	restaurant, err := s.store.Restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, notFoundAs(err, ErrRestaurantNotFound)
	}

	reviews, total, err := s.store.Reviews.ListByRestaurant(ctx, restaurantID, p)
	if err != nil {
		return nil, err
	}
	histogram, err := s.store.Reviews.Histogram(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	return &RestaurantReviews{
		Reviews:   reviews,
		Total:     total,
		Histogram: histogram,
		AvgRating: restaurant.AvgRating,
	}, nil
}
