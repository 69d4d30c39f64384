package service

import (
	"errors"

	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
)

var (
	ErrUserNotFound        = apperrors.New(apperrors.KindNotFound, apperrors.UserNotFound, "User not found")
	ErrRestaurantNotFound  = apperrors.New(apperrors.KindNotFound, apperrors.RestaurantNotFound, "Restaurant not found")
	ErrTableNotFound       = apperrors.New(apperrors.KindNotFound, apperrors.TableNotFound, "Table not found")
	ErrMealNotFound        = apperrors.New(apperrors.KindNotFound, apperrors.MealNotFound, "Meal not found")
	ErrVipRoomNotFound     = apperrors.New(apperrors.KindNotFound, apperrors.VipRoomNotFound, "VIP room not found")
	ErrReservationNotFound = apperrors.New(apperrors.KindNotFound, apperrors.ReservationNotFound, "Reservation not found")
	ErrReviewNotFound      = apperrors.New(apperrors.KindNotFound, apperrors.ReviewNotFound, "Review not found")

	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthInvalidCredentials, "Invalid email or password")
	ErrEmailNotConfirmed  = apperrors.New(apperrors.KindValidation, apperrors.AuthEmailNotConfirmed, "Please confirm your email before signing in")
	ErrInvalidToken       = apperrors.New(apperrors.KindValidation, apperrors.AuthTokenInvalid, "Invalid or expired token")
	ErrResetTokenInvalid  = apperrors.New(apperrors.KindValidation, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token")
	ErrWrongPassword      = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthInvalidCredentials, "Old password is incorrect")
	ErrSamePassword       = apperrors.New(apperrors.KindValidation, apperrors.ValidationSamePassword, "New password cannot be the same as the old password")
	ErrEmailAlreadyExists = apperrors.New(apperrors.KindConflict, apperrors.AuthEmailAlreadyExists, "Email already exists")

	ErrNotRestaurantOwner = apperrors.New(apperrors.KindUnauthorized, apperrors.AuthzNotOwner, "You are not the owner of this restaurant")
	ErrNotAccountOwner    = apperrors.New(apperrors.KindUnauthorized, apperrors.AuthzForbidden, "You can only manage your own account")
	ErrNotReservationUser = apperrors.New(apperrors.KindUnauthorized, apperrors.AuthzForbidden, "You are not allowed to access this reservation")
	ErrNotReviewAuthor    = apperrors.New(apperrors.KindUnauthorized, apperrors.AuthzForbidden, "You can only modify your own reviews")
	ErrOwnerRoleRequired  = apperrors.New(apperrors.KindUnauthorized, apperrors.AuthzInsufficientRole, "Only restaurant owners can perform this action")

	ErrRestaurantExists       = apperrors.New(apperrors.KindConflict, apperrors.RestaurantOnePerOwner, "You already own a restaurant")
	ErrTableNumberTaken       = apperrors.New(apperrors.KindConflict, apperrors.TableNumberTaken, "Table number already exists in this restaurant")
	ErrTableHasReservations   = apperrors.New(apperrors.KindConflict, apperrors.TableHasReservations, "Table is referenced by reservations and cannot be deleted")
	ErrMealHasReservations    = apperrors.New(apperrors.KindConflict, apperrors.MealHasReservations, "Meal is referenced by reservations and cannot be deleted")
	ErrForeignResource        = apperrors.New(apperrors.KindConflict, apperrors.ReservationForeignResource, "Table and meals must belong to the reserved restaurant")
	ErrSlotTaken              = apperrors.New(apperrors.KindSlotConflict, apperrors.ReservationSlotTaken, "Table is already reserved at this date and time")
	ErrReviewExists           = apperrors.New(apperrors.KindConflict, apperrors.ReviewAlreadyExists, "This reservation has already been reviewed")
	ErrReservationNotReserved = apperrors.New(apperrors.KindValidation, apperrors.ReservationNotModifiable, "Only reserved reservations can be changed")
	ErrReservationIncomplete  = apperrors.New(apperrors.KindValidation, apperrors.ReviewReservationIncomplete, "Only completed reservations can be reviewed")
	ErrInvalidRating          = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidRating, "Rate must be an integer between 1 and 5")
	ErrInvalidSlot            = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidSlot, "Date must be YYYY-MM-DD and time HH:MM")
	ErrInvalidStatus          = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidStatus, "Unknown reservation status")
	ErrInvalidMealLine        = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "Every meal line needs a meal and a quantity of 1 or more")
	ErrImageRequired          = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidFile, "Image is required")
	ErrTooManyImages          = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidFile, "Too many images")
)

// notFoundAs swaps the repository's generic not-found error for a domain sentinel.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

// constraintAs swaps the repository's constraint violation for a domain sentinel.
func constraintAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrConstraintViolation) {
		return sentinel
	}
	return err
}
