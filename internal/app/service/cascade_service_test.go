package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
)

func setupCascadeServiceTest(t *testing.T) (CascadeService, *fixture, *fakeAssets) {
	store := setupStore(t)
	assets := &fakeAssets{}
	return NewCascadeService(store, assets), newFixture(t, store), assets
}

// populatedRestaurant builds a restaurant with every kind of dependent row.
func populatedRestaurant(f *fixture, owner, diner *model.User) *model.Restaurant {
	r := f.restaurant(owner)
	tbl := f.table(r, 1)
	f.table(r, 2)
	m := f.meal(r, "soup")
	f.vipRoom(r)
	f.reservation(diner, tbl, m, "2026-01-10", "19:00", model.ReservationReserved)
	done := f.reservation(diner, tbl, m, "2026-01-09", "19:00", model.ReservationCompleted)
	f.review(diner, done, 4)
	require.NoError(f.t, f.store.Favorites.Add(f.ctx, diner.ID, r.ID))
	return r
}

func TestCascadeService_DeleteRestaurant(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	diner := f.user(model.RoleUser)
	r := populatedRestaurant(f, owner, diner)

	otherOwner := f.user(model.RoleRestaurantOwner)
	other := f.restaurant(otherOwner)
	f.table(other, 1)

	require.NoError(t, svc.DeleteRestaurant(context.Background(), owner.ID, r.ID))

	byRestaurant := repository.Filter{"restaurant_id": r.ID}
	assert.Zero(t, f.count(&model.Table{}, byRestaurant))
	assert.Zero(t, f.count(&model.Meal{}, byRestaurant))
	assert.Zero(t, f.count(&model.VipRoom{}, byRestaurant))
	assert.Zero(t, f.count(&model.Reservation{}, byRestaurant))
	assert.Zero(t, f.count(&model.Review{}, byRestaurant))
	assert.Zero(t, f.count(&model.Favorite{}, byRestaurant))
	assert.Zero(t, f.count(&model.ReservationMeal{}, repository.Filter{}))
	assert.Zero(t, f.count(&model.Restaurant{}, repository.Filter{"id": r.ID}))

	// untouched neighbour
	assert.Equal(t, int64(1), f.count(&model.Table{}, repository.Filter{"restaurant_id": other.ID}))

	reloaded, err := f.store.Users.FindByID(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.RestaurantID)

	assert.ElementsMatch(t, []string{
		r.ProfileImage.PublicID,
		r.LayoutImage.PublicID,
		r.GalleryImages[0].PublicID,
		"r" + itoa(r.ID) + "/meal/soup",
		"r" + itoa(r.ID) + "/vip/1",
		"r" + itoa(r.ID) + "/vip/2",
	}, assets.Destroyed())
}

func TestCascadeService_DeleteRestaurant_AssetFailuresAreSwallowed(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	assets.failDestroy = true
	owner := f.user(model.RoleRestaurantOwner)
	r := populatedRestaurant(f, owner, f.user(model.RoleUser))

	require.NoError(t, svc.DeleteRestaurant(context.Background(), owner.ID, r.ID))
	assert.NotEmpty(t, assets.Destroyed())
	assert.Zero(t, f.count(&model.Restaurant{}, repository.Filter{"id": r.ID}))
}

func TestCascadeService_DeleteRestaurant_Rejections(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	intruder := f.user(model.RoleRestaurantOwner)
	r := populatedRestaurant(f, owner, f.user(model.RoleUser))

	err := svc.DeleteRestaurant(context.Background(), intruder.ID, r.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, int64(1), f.count(&model.Restaurant{}, repository.Filter{"id": r.ID}))
	assert.Equal(t, int64(2), f.count(&model.Table{}, repository.Filter{"restaurant_id": r.ID}))
	assert.Empty(t, assets.Destroyed())

	err = svc.DeleteRestaurant(context.Background(), owner.ID, 9999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCascadeService_DeleteRestaurant_AbortsWhenDependentDeleteFails(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	r := populatedRestaurant(f, owner, f.user(model.RoleUser))

	// meals go after reservations, reviews and tables, so those deletes must roll back too
	require.NoError(t, f.store.DB().Exec(
		`CREATE TRIGGER meals_keep BEFORE DELETE ON meals BEGIN SELECT RAISE(ABORT, 'meals are kept'); END`,
	).Error)

	require.Error(t, svc.DeleteRestaurant(context.Background(), owner.ID, r.ID))

	byRestaurant := repository.Filter{"restaurant_id": r.ID}
	assert.Equal(t, int64(1), f.count(&model.Restaurant{}, repository.Filter{"id": r.ID}))
	assert.Equal(t, int64(2), f.count(&model.Table{}, byRestaurant))
	assert.Equal(t, int64(1), f.count(&model.Meal{}, byRestaurant))
	assert.Equal(t, int64(1), f.count(&model.VipRoom{}, byRestaurant))
	assert.Equal(t, int64(2), f.count(&model.Reservation{}, byRestaurant))
	assert.Equal(t, int64(1), f.count(&model.Review{}, byRestaurant))
	assert.Equal(t, int64(1), f.count(&model.Favorite{}, byRestaurant))
	assert.NotZero(t, f.count(&model.ReservationMeal{}, repository.Filter{}))
	assert.Empty(t, assets.Destroyed())

	reloaded, err := f.store.Users.FindByID(f.ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RestaurantID)
	assert.Equal(t, r.ID, *reloaded.RestaurantID)

	// the owner's account delete cascades through the same path and must keep the user
	require.Error(t, svc.DeleteUser(context.Background(), owner.ID, owner.ID))
	assert.Equal(t, int64(1), f.count(&model.User{}, repository.Filter{"id": owner.ID}))
	assert.Equal(t, int64(1), f.count(&model.Restaurant{}, repository.Filter{"id": r.ID}))
	assert.Empty(t, assets.Destroyed())
}

func TestCascadeService_DeleteUser(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	diner := f.user(model.RoleUser)
	owned := populatedRestaurant(f, owner, diner)

	// the owner also dines elsewhere and reviewed it
	elsewhereOwner := f.user(model.RoleRestaurantOwner)
	elsewhere := f.restaurant(elsewhereOwner)
	tbl := f.table(elsewhere, 7)
	m := f.meal(elsewhere, "cake")
	ownVisit := f.reservation(owner, tbl, m, "2026-02-01", "12:00", model.ReservationCompleted)
	f.review(owner, ownVisit, 1)
	dinerVisit := f.reservation(diner, tbl, m, "2026-02-02", "12:00", model.ReservationCompleted)
	f.review(diner, dinerVisit, 5)
	f.reservation(owner, tbl, m, "2026-03-01", "20:00", model.ReservationReserved)
	require.NoError(t, refreshTableStatus(f.ctx, f.store, tbl.ID))

	before, err := f.store.Restaurants.FindByID(f.ctx, elsewhere.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, before.AvgRating, 0.001)

	require.NoError(t, svc.DeleteUser(context.Background(), owner.ID, owner.ID))

	byUser := repository.Filter{"user_id": owner.ID}
	assert.Zero(t, f.count(&model.User{}, repository.Filter{"id": owner.ID}))
	assert.Zero(t, f.count(&model.Reservation{}, byUser))
	assert.Zero(t, f.count(&model.Review{}, byUser))
	assert.Zero(t, f.count(&model.Restaurant{}, repository.Filter{"id": owned.ID}))
	assert.Zero(t, f.count(&model.Table{}, repository.Filter{"restaurant_id": owned.ID}))
	assert.Zero(t, f.count(&model.Review{}, repository.Filter{"restaurant_id": owned.ID}))

	after, err := f.store.Restaurants.FindByID(f.ctx, elsewhere.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, after.AvgRating, 0.001)

	freed, err := f.store.Tables.FindByID(f.ctx, tbl.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, freed.Status)

	// diner's own rows at the other restaurant survive
	assert.Equal(t, int64(1), f.count(&model.Reservation{}, repository.Filter{"user_id": diner.ID}))
	assert.Contains(t, assets.Destroyed(), owner.Image.PublicID)
	assert.Contains(t, assets.Destroyed(), owned.ProfileImage.PublicID)
}

func TestCascadeService_DeleteUser_Rejections(t *testing.T) {
	svc, f, _ := setupCascadeServiceTest(t)
	u := f.user(model.RoleUser)
	other := f.user(model.RoleUser)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), other.ID, u.ID), apperrors.ErrUnauthorized)
	// a zero caller id is never trusted
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 0, u.ID), ErrNotAccountOwner)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 4242, 4242), ErrUserNotFound)
	assert.Equal(t, int64(1), f.count(&model.User{}, repository.Filter{"id": u.ID}))
}

func TestCascadeService_DeleteUserAsSystem(t *testing.T) {
	svc, f, _ := setupCascadeServiceTest(t)
	u := f.user(model.RoleUser)

	assert.ErrorIs(t, svc.DeleteUserAsSystem(context.Background(), 4242), ErrUserNotFound)

	require.NoError(t, svc.DeleteUserAsSystem(context.Background(), u.ID))
	assert.Zero(t, f.count(&model.User{}, repository.Filter{"id": u.ID}))
}

func TestOwnedRestaurant_ZeroCallerIsNotOwner(t *testing.T) {
	store := setupStore(t)
	f := newFixture(t, store)
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)

	_, err := ownedRestaurant(context.Background(), store, 0, r.ID, false)
	assert.ErrorIs(t, err, ErrNotRestaurantOwner)

	got, err := ownedRestaurant(context.Background(), store, owner.ID, r.ID, false)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestCascadeService_DeleteTable(t *testing.T) {
	svc, f, _ := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	diner := f.user(model.RoleUser)
	r := f.restaurant(owner)
	m := f.meal(r, "soup")
	used := f.table(r, 1)
	free := f.table(r, 2)

	// a canceled reservation still blocks the delete
	f.reservation(diner, used, m, "2026-01-10", "19:00", model.ReservationCanceled)

	tests := []struct {
		name    string
		caller  uint
		tableID uint
		wantErr error
	}{
		{name: "Referenced table", caller: owner.ID, tableID: used.ID, wantErr: apperrors.ErrConflict},
		{name: "Not the owner", caller: diner.ID, tableID: free.ID, wantErr: apperrors.ErrUnauthorized},
		{name: "Missing table", caller: owner.ID, tableID: 999, wantErr: ErrTableNotFound},
		{name: "Free table", caller: owner.ID, tableID: free.ID, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteTable(context.Background(), tt.caller, tt.tableID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, int64(1), f.count(&model.Table{}, repository.Filter{"id": used.ID}))
	assert.Zero(t, f.count(&model.Table{}, repository.Filter{"id": free.ID}))
}

func TestCascadeService_DeleteMeal(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)
	tbl := f.table(r, 1)
	ordered := f.meal(r, "soup")
	unordered := f.meal(r, "salad")
	f.reservation(f.user(model.RoleUser), tbl, ordered, "2026-01-10", "19:00", model.ReservationCompleted)

	err := svc.DeleteMeal(context.Background(), owner.ID, ordered.ID)
	assert.ErrorIs(t, err, ErrMealHasReservations)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, svc.DeleteMeal(context.Background(), owner.ID, unordered.ID))
	assert.Zero(t, f.count(&model.Meal{}, repository.Filter{"id": unordered.ID}))
	assert.Equal(t, []string{unordered.Image.PublicID}, assets.Destroyed())
}

func TestCascadeService_DeleteVipRoom(t *testing.T) {
	svc, f, assets := setupCascadeServiceTest(t)
	assets.failDestroy = true
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)
	room := f.vipRoom(r)

	assert.ErrorIs(t, svc.DeleteVipRoom(context.Background(), f.user(model.RoleUser).ID, room.ID), apperrors.ErrUnauthorized)

	require.NoError(t, svc.DeleteVipRoom(context.Background(), owner.ID, room.ID))
	assert.Zero(t, f.count(&model.VipRoom{}, repository.Filter{"id": room.ID}))
	assert.Len(t, assets.Destroyed(), 2)

	assert.ErrorIs(t, svc.DeleteVipRoom(context.Background(), owner.ID, room.ID), ErrVipRoomNotFound)
}
