package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

func TestTableService(t *testing.T) {
	store := setupStore(t)
	f := newFixture(t, store)
	svc := NewTableService(store)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)

	first, err := svc.Create(ctx, owner.ID, r.ID, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, first.Status)

	_, err = svc.Create(ctx, owner.ID, r.ID, 1, 2)
	assert.ErrorIs(t, err, ErrTableNumberTaken)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Create(ctx, owner.ID, r.ID, 2, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, f.user(model.RoleRestaurantOwner).ID, r.ID, 3, 2)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	second, err := svc.Create(ctx, owner.ID, r.ID, 2, 6)
	require.NoError(t, err)

	taken := 1
	_, err = svc.Update(ctx, owner.ID, second.ID, &taken, nil)
	assert.ErrorIs(t, err, ErrTableNumberTaken)

	capacity := 8
	updated, err := svc.Update(ctx, owner.ID, second.ID, nil, &capacity)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Capacity)

	tables, err := svc.ListByRestaurant(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].TableNumber)

	_, err = svc.ListByRestaurant(ctx, 999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestMealService(t *testing.T) {
	store := setupStore(t)
	f := newFixture(t, store)
	assets := &fakeAssets{}
	svc := NewMealService(store, assets)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)

	img := imageFile("soup.png")
	soup, err := svc.Create(ctx, owner.ID, r.ID, MealInput{Name: "Tomato Soup", Price: 7.5, Category: "Meals"}, &img)
	require.NoError(t, err)
	assert.Equal(t, "meals", soup.Category)
	assert.Contains(t, soup.Image.PublicID, storage.FolderMeal)

	_, err = svc.Create(ctx, owner.ID, r.ID, MealInput{Name: "Free lunch", Price: -1}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	cake, err := svc.Create(ctx, owner.ID, r.ID, MealInput{Name: "Cheese cake", Price: 5}, nil)
	require.NoError(t, err)

	price := 8.0
	newImg := imageFile("soup2.png")
	updated, err := svc.Update(ctx, owner.ID, soup.ID, MealPatch{Price: &price}, &newImg)
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Price)
	assert.Equal(t, []string{soup.Image.PublicID}, assets.Destroyed())

	found, total, err := svc.ListByRestaurant(ctx, r.ID, "soup", util.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, soup.ID, found[0].ID)

	tbl := f.table(r, 1)
	diner := f.user(model.RoleUser)
	res := f.reservation(diner, tbl, cake, "2026-01-01", "12:00", model.ReservationCompleted)
	require.NoError(t, store.Reservations.ReplaceMeals(ctx, res.ID, []model.ReservationMeal{
		{MealID: cake.ID, Quantity: 1},
		{MealID: soup.ID, Quantity: 4},
	}))

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, soup.ID, featured[0].ID)
	assert.Equal(t, int64(4), featured[0].TotalQuantity)

	svc.(*mealService).now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	featured, err = svc.Featured(ctx)
	require.NoError(t, err)
	assert.Empty(t, featured)
}

func TestVipRoomService(t *testing.T) {
	store := setupStore(t)
	f := newFixture(t, store)
	assets := &fakeAssets{}
	svc := NewVipRoomService(store, assets)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)

	room, err := svc.Create(ctx, owner.ID, r.ID, "Garden", 10, []storage.File{imageFile("a.png"), imageFile("b.png")})
	require.NoError(t, err)
	require.Len(t, room.Images, 2)

	tooMany := make([]storage.File, MaxVipRoomImages+1)
	for i := range tooMany {
		tooMany[i] = imageFile("x.png")
	}
	_, err = svc.Create(ctx, owner.ID, r.ID, "Crowded", 10, tooMany)
	assert.ErrorIs(t, err, ErrTooManyImages)

	name := "Rose Garden"
	updated, err := svc.Update(ctx, owner.ID, room.ID, &name, nil, []storage.File{imageFile("c.png")})
	require.NoError(t, err)
	assert.Equal(t, "Rose Garden", updated.Name)
	require.Len(t, updated.Images, 1)
	assert.ElementsMatch(t, []string{room.Images[0].PublicID, room.Images[1].PublicID}, assets.Destroyed())

	rooms, total, err := svc.ListByRestaurant(ctx, r.ID, util.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rooms, 1)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrVipRoomNotFound)
}
