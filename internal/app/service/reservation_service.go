package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04"
)

// ReservationLine is one requested (meal, quantity) pair.
type ReservationLine struct {
	MealID   uint `json:"meal_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type CreateReservationInput struct {
	RestaurantID uint
	TableID      uint
	Date         string
	Time         string
	Meals        []ReservationLine
}

// UpdateReservationInput reschedules a reservation. Nil fields keep their current value.
type UpdateReservationInput struct {
	TableID *uint
	Date    *string
	Time    *string
	Meals   []ReservationLine
}

// ReservationFilter narrows an owner's reservation listing.
type ReservationFilter struct {
	Status model.ReservationStatus
	Date   string
}

type ReservationService interface {
	Create(ctx context.Context, userID uint, input CreateReservationInput) (*model.Reservation, error)
	Update(ctx context.Context, userID, reservationID uint, input UpdateReservationInput) (*model.Reservation, error)
	ChangeStatus(ctx context.Context, callerID, reservationID uint, status model.ReservationStatus) (*model.Reservation, error)
	Get(ctx context.Context, callerID, reservationID uint) (*model.Reservation, error)
	ListMine(ctx context.Context, userID uint, p util.Pagination) ([]model.Reservation, int64, error)
	ListForRestaurant(ctx context.Context, callerID, restaurantID uint, filter ReservationFilter, p util.Pagination) ([]model.Reservation, int64, error)
	ExportForRestaurant(ctx context.Context, callerID, restaurantID uint, filter ReservationFilter) ([]model.Reservation, error)
}

type reservationService struct {
	store    *repository.Store
	notifier ReservationNotifier
}

func NewReservationService(store *repository.Store, notifier ReservationNotifier) ReservationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &reservationService{store: store, notifier: notifier}
}

// normalizeSlot parses date and time and returns their canonical slot key form.
func normalizeSlot(date, clock string) (string, string, error) {
	d, err := time.Parse(slotDateLayout, date)
	if err != nil {
		return "", "", ErrInvalidSlot
	}
	t, err := time.Parse(slotTimeLayout, clock)
	if err != nil {
		if t, err = time.Parse("15:04:05", clock); err != nil {
			return "", "", ErrInvalidSlot
		}
	}
	return d.Format(slotDateLayout), t.Format(slotTimeLayout), nil
}

// validateLines checks the line items that are present. A reservation may order nothing.
func validateLines(lines []ReservationLine) error {
	for _, line := range lines {
		if line.MealID == 0 || line.Quantity < 1 {
			return ErrInvalidMealLine
		}
	}
	return nil
}

// checkBooking verifies that the table and meals belong to the restaurant and that the
// (table, date, time) slot holds no other reserved reservation. excludeID skips the
// reservation being rescheduled. The table row stays locked until the transaction ends.
func checkBooking(ctx context.Context, tx *repository.Store, restaurantID, tableID uint, date, clock string, lines []ReservationLine, excludeID uint) ([]model.ReservationMeal, error) {
	table, err := tx.Tables.FindByIDForUpdate(ctx, tableID)
	if err != nil {
		return nil, notFoundAs(err, ErrTableNotFound)
	}
	if table.RestaurantID != restaurantID {
		return nil, ErrForeignResource
	}

	if len(lines) > 0 {
		mealIDs := lo.Uniq(lo.Map(lines, func(l ReservationLine, _ int) uint { return l.MealID }))
		meals, err := tx.Meals.FindMany(ctx, repository.Filter{"id": mealIDs})
		if err != nil {
			return nil, err
		}
		if len(meals) != len(mealIDs) {
			return nil, ErrMealNotFound
		}
		if lo.SomeBy(meals, func(m model.Meal) bool { return m.RestaurantID != restaurantID }) {
			return nil, ErrForeignResource
		}
	}

	holder, err := tx.Reservations.FindSlotHolder(ctx, tableID, date, clock, excludeID)
	switch {
	case err == nil:
		logger.Warn("Reservation slot already taken", map[string]interface{}{
			"table_id":       tableID,
			"date":           date,
			"time":           clock,
			"reservation_id": holder.ID,
		})
		return nil, ErrSlotTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	return lo.Map(lines, func(l ReservationLine, i int) model.ReservationMeal {
		return model.ReservationMeal{MealID: l.MealID, Quantity: l.Quantity, Position: i}
	}), nil
}

func (s *reservationService) Create(ctx context.Context, userID uint, input CreateReservationInput) (*model.Reservation, error) {
	date, clock, err := normalizeSlot(input.Date, input.Time)
	if err != nil {
		return nil, err
	}
	if err := validateLines(input.Meals); err != nil {
		return nil, err
	}

	logger.Info("Creating reservation", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": input.RestaurantID,
		"table_id":      input.TableID,
		"date":          date,
		"time":          clock,
	})

	var reservationID uint
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Restaurants.FindByID(ctx, input.RestaurantID); err != nil {
			return notFoundAs(err, ErrRestaurantNotFound)
		}

		items, err := checkBooking(ctx, tx, input.RestaurantID, input.TableID, date, clock, input.Meals, 0)
		if err != nil {
			return err
		}

		reservation := &model.Reservation{
			UserID:       userID,
			RestaurantID: input.RestaurantID,
			TableID:      input.TableID,
			Date:         date,
			Time:         clock,
			Status:       model.ReservationReserved,
			Meals:        items,
		}
		if err := tx.Reservations.Insert(ctx, reservation); err != nil {
			return constraintAs(err, ErrSlotTaken)
		}
		reservationID = reservation.ID
		return refreshTableStatus(ctx, tx, input.TableID)
	})
	if err != nil {
		return nil, err
	}

	reservation, err := s.store.Reservations.FindWithMeals(ctx, reservationID)
	if err != nil {
		return nil, notFoundAs(err, ErrReservationNotFound)
	}
	s.publish(model.ReservationCreated, reservation)

	logger.Info("Reservation created", map[string]interface{}{
		"reservation_id": reservation.ID,
		"user_id":        userID,
	})
	return reservation, nil
}

func (s *reservationService) Update(ctx context.Context, userID, reservationID uint, input UpdateReservationInput) (*model.Reservation, error) {
	if input.Meals != nil {
		if err := validateLines(input.Meals); err != nil {
			return nil, err
		}
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reservations.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return notFoundAs(err, ErrReservationNotFound)
		}
		if current.UserID != userID {
			return ErrNotReservationUser
		}
		if current.Status != model.ReservationReserved {
			return ErrReservationNotReserved
		}

		withMeals, err := tx.Reservations.FindWithMeals(ctx, reservationID)
		if err != nil {
			return notFoundAs(err, ErrReservationNotFound)
		}

		tableID := lo.FromPtrOr(input.TableID, current.TableID)
		date, clock, err := normalizeSlot(lo.FromPtrOr(input.Date, current.Date), lo.FromPtrOr(input.Time, current.Time))
		if err != nil {
			return err
		}
		lines := input.Meals
		if lines == nil {
			lines = lo.Map(withMeals.Meals, func(m model.ReservationMeal, _ int) ReservationLine {
				return ReservationLine{MealID: m.MealID, Quantity: m.Quantity}
			})
		}

		items, err := checkBooking(ctx, tx, current.RestaurantID, tableID, date, clock, lines, current.ID)
		if err != nil {
			return err
		}

		err = tx.Reservations.UpdateByID(ctx, current.ID, map[string]interface{}{
			"table_id": tableID,
			"date":     date,
			"time":     clock,
		})
		if err != nil {
			return constraintAs(notFoundAs(err, ErrReservationNotFound), ErrSlotTaken)
		}
		if input.Meals != nil {
			if err := tx.Reservations.ReplaceMeals(ctx, current.ID, items); err != nil {
				return err
			}
		}
		return refreshTableStatus(ctx, tx, lo.Uniq([]uint{current.TableID, tableID})...)
	})
	if err != nil {
		return nil, err
	}

	reservation, err := s.store.Reservations.FindWithMeals(ctx, reservationID)
	if err != nil {
		return nil, notFoundAs(err, ErrReservationNotFound)
	}
	s.publish(model.ReservationRescheduled, reservation)

	logger.Info("Reservation rescheduled", map[string]interface{}{
		"reservation_id": reservationID,
		"table_id":       reservation.TableID,
		"date":           reservation.Date,
		"time":           reservation.Time,
	})
	return reservation, nil
}

func (s *reservationService) ChangeStatus(ctx context.Context, callerID, reservationID uint, status model.ReservationStatus) (*model.Reservation, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reservations.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return notFoundAs(err, ErrReservationNotFound)
		}

		actor, err := reservationActor(ctx, tx, callerID, current)
		if err != nil {
			return err
		}
		if err := model.CanTransition(current.Status, status, actor); err != nil {
			return apperrors.New(apperrors.KindValidation, apperrors.ReservationInvalidTransition, err.Error())
		}

		err = tx.Reservations.UpdateByID(ctx, current.ID, map[string]interface{}{"status": status})
		if err != nil {
			return notFoundAs(err, ErrReservationNotFound)
		}
		return refreshTableStatus(ctx, tx, current.TableID)
	})
	if err != nil {
		return nil, err
	}

	reservation, err := s.store.Reservations.FindWithMeals(ctx, reservationID)
	if err != nil {
		return nil, notFoundAs(err, ErrReservationNotFound)
	}
	s.publish(model.ReservationStatusChanged, reservation)

	logger.Info("Reservation status changed", map[string]interface{}{
		"reservation_id": reservationID,
		"status":         status,
		"caller_id":      callerID,
	})
	return reservation, nil
}

// reservationActor resolves whether the caller acts as the restaurant owner or as the booker.
func reservationActor(ctx context.Context, store *repository.Store, callerID uint, reservation *model.Reservation) (model.ReservationActor, error) {
	restaurant, err := store.Restaurants.FindByID(ctx, reservation.RestaurantID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if restaurant != nil && restaurant.OwnerID == callerID {
		return model.ActorOwner, nil
	}
	if reservation.UserID == callerID {
		return model.ActorBooker, nil
	}
	return "", ErrNotReservationUser
}

func (s *reservationService) Get(ctx context.Context, callerID, reservationID uint) (*model.Reservation, error) {
	reservation, err := s.store.Reservations.FindWithMeals(ctx, reservationID)
	if err != nil {
		return nil, notFoundAs(err, ErrReservationNotFound)
	}
	if _, err := reservationActor(ctx, s.store, callerID, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) ListMine(ctx context.Context, userID uint, p util.Pagination) ([]model.Reservation, int64, error) {
	filter := repository.Filter{"user_id": userID}
	total, err := s.store.Reservations.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.Reservations.ListWithMeals(ctx, filter,
		repository.OrderBy("date DESC, time DESC, id DESC"),
		repository.Paginate(p),
	)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *reservationService) restaurantFilter(ctx context.Context, callerID, restaurantID uint, filter ReservationFilter) (repository.Filter, error) {
	if _, err := ownedRestaurant(ctx, s.store, callerID, restaurantID, false); err != nil {
		return nil, err
	}
	query := repository.Filter{"restaurant_id": restaurantID}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		query["status"] = filter.Status
	}
	if filter.Date != "" {
		d, err := time.Parse(slotDateLayout, filter.Date)
		if err != nil {
			return nil, ErrInvalidSlot
		}
		query["date"] = d.Format(slotDateLayout)
	}
	return query, nil
}

func (s *reservationService) ListForRestaurant(ctx context.Context, callerID, restaurantID uint, filter ReservationFilter, p util.Pagination) ([]model.Reservation, int64, error) {
	query, err := s.restaurantFilter(ctx, callerID, restaurantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Reservations.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.Reservations.ListWithMeals(ctx, query,
		repository.OrderBy("date ASC, time ASC, id ASC"),
		repository.Paginate(p),
	)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *reservationService) ExportForRestaurant(ctx context.Context, callerID, restaurantID uint, filter ReservationFilter) ([]model.Reservation, error) {
	query, err := s.restaurantFilter(ctx, callerID, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	return s.store.Reservations.ListWithMeals(ctx, query, repository.OrderBy("date ASC, time ASC, id ASC"))
}

func (s *reservationService) publish(eventType model.ReservationEventType, reservation *model.Reservation) {
	s.notifier.PublishReservation(model.ReservationEvent{
		Type:         eventType,
		RestaurantID: reservation.RestaurantID,
		Reservation:  *reservation,
	})
}
