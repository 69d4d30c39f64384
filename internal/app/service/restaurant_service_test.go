package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

func setupRestaurantServiceTest(t *testing.T) (RestaurantService, *fixture, *fakeAssets) {
	store := setupStore(t)
	assets := &fakeAssets{}
	svc := NewRestaurantService(store, assets, []string{"desserts", "drinks", "meals"})
	return svc, newFixture(t, store), assets
}

func restaurantUploads() RestaurantUploads {
	profile := imageFile("profile.png")
	layout := imageFile("layout.png")
	return RestaurantUploads{
		Profile: &profile,
		Layout:  &layout,
		Gallery: []storage.File{imageFile("g1.png"), imageFile("g2.png")},
	}
}

func TestRestaurantService_Create(t *testing.T) {
	svc, f, assets := setupRestaurantServiceTest(t)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)

	r, err := svc.Create(ctx, owner.ID, RestaurantInput{
		Name:         "Sweet Spot",
		Address:      "2 Side St",
		Phone:        "0200",
		OpeningHours: "10-20",
		Categories:   []string{"Desserts", "drinks", "desserts"},
	}, restaurantUploads())
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"desserts", "drinks"}, r.Categories)
	assert.Contains(t, r.ProfileImage.PublicID, storage.FolderRestaurantProfile)
	assert.Contains(t, r.LayoutImage.PublicID, storage.FolderRestaurantLayout)
	assert.Len(t, r.GalleryImages, 2)
	assert.Len(t, assets.uploaded, 4)

	reloaded, err := f.store.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RestaurantID)
	assert.Equal(t, r.ID, *reloaded.RestaurantID)

	_, err = svc.Create(ctx, owner.ID, RestaurantInput{Name: "Second", Categories: []string{"meals"}}, restaurantUploads())
	assert.ErrorIs(t, err, ErrRestaurantExists)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRestaurantService_Create_Rejections(t *testing.T) {
	svc, f, assets := setupRestaurantServiceTest(t)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	diner := f.user(model.RoleUser)

	tests := []struct {
		name    string
		userID  uint
		input   RestaurantInput
		uploads RestaurantUploads
		wantErr error
	}{
		{
			name:    "Unknown category",
			userID:  owner.ID,
			input:   RestaurantInput{Name: "x", Categories: []string{"pizza"}},
			uploads: restaurantUploads(),
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "No categories",
			userID:  owner.ID,
			input:   RestaurantInput{Name: "x"},
			uploads: restaurantUploads(),
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "Missing layout image",
			userID:  owner.ID,
			input:   RestaurantInput{Name: "x", Categories: []string{"meals"}},
			uploads: RestaurantUploads{Profile: restaurantUploads().Profile},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "Plain user",
			userID:  diner.ID,
			input:   RestaurantInput{Name: "x", Categories: []string{"meals"}},
			uploads: restaurantUploads(),
			wantErr: ErrOwnerRoleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.userID, tt.input, tt.uploads)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, assets.uploaded)
}

func TestRestaurantService_Create_BadFileRollsBackUploads(t *testing.T) {
	svc, f, assets := setupRestaurantServiceTest(t)
	owner := f.user(model.RoleRestaurantOwner)

	uploads := restaurantUploads()
	uploads.Gallery = append(uploads.Gallery, storage.File{Name: "doc.pdf", ContentType: "application/pdf", Size: 10})

	_, err := svc.Create(context.Background(), owner.ID, RestaurantInput{Name: "x", Categories: []string{"meals"}}, uploads)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	uploaded := make([]string, 0, len(assets.uploaded))
	for _, img := range assets.uploaded {
		uploaded = append(uploaded, img.PublicID)
	}
	assert.ElementsMatch(t, uploaded, assets.Destroyed())
	assert.Zero(t, f.count(&model.Restaurant{}, repository.Filter{"owner_id": owner.ID}))
}

func TestRestaurantService_Update(t *testing.T) {
	svc, f, assets := setupRestaurantServiceTest(t)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)

	name := "Renamed"
	profile := imageFile("new-profile.png")
	updated, err := svc.Update(ctx, owner.ID, r.ID, RestaurantPatch{
		Name:       &name,
		Categories: []string{"drinks"},
	}, RestaurantUploads{Profile: &profile})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, model.StringArray{"drinks"}, updated.Categories)
	assert.NotEqual(t, r.ProfileImage.PublicID, updated.ProfileImage.PublicID)
	assert.Equal(t, r.LayoutImage, updated.LayoutImage)
	assert.Equal(t, []string{r.ProfileImage.PublicID}, assets.Destroyed())

	_, err = svc.Update(ctx, f.user(model.RoleRestaurantOwner).ID, r.ID, RestaurantPatch{Name: &name}, RestaurantUploads{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Update(ctx, owner.ID, r.ID, RestaurantPatch{Categories: []string{"sushi"}}, RestaurantUploads{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRestaurantService_Reads(t *testing.T) {
	svc, f, _ := setupRestaurantServiceTest(t)
	ctx := context.Background()
	owner := f.user(model.RoleRestaurantOwner)
	r := f.restaurant(owner)
	f.restaurant(f.user(model.RoleRestaurantOwner))

	got, err := svc.GetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	list, total, err := svc.List(ctx, repository.RestaurantQuery{Categories: []string{" MEALS "}}, util.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}
