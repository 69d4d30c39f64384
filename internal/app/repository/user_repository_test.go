package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/db"
)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return NewStore(testDB)
}

func TestUserRepository_InsertAndFind(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{
			name:    "Valid user",
			user:    &model.User{Email: "diner@example.com", PasswordHash: "hash", Name: "diner", Role: model.RoleUser},
			wantErr: nil,
		},
		{
			name:    "Duplicate email",
			user:    &model.User{Email: "diner@example.com", PasswordHash: "hash", Name: "other", Role: model.RoleUser},
			wantErr: ErrConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Users.Insert(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}

	found, err := store.Users.FindByEmail(ctx, "DINER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "diner", found.Name)

	_, err = store.Users.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityRepository_Contract(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	table := &model.Table{RestaurantID: 1, TableNumber: 1, Capacity: 4}
	require.NoError(t, store.Tables.Insert(ctx, table))
	require.NoError(t, store.Tables.Insert(ctx, &model.Table{RestaurantID: 1, TableNumber: 2, Capacity: 2}))
	require.NoError(t, store.Tables.Insert(ctx, &model.Table{RestaurantID: 2, TableNumber: 1, Capacity: 6}))

	t.Run("Table number unique per restaurant", func(t *testing.T) {
		err := store.Tables.Insert(ctx, &model.Table{RestaurantID: 1, TableNumber: 2, Capacity: 2})
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})

	t.Run("FindByID and missing id", func(t *testing.T) {
		got, err := store.Tables.FindByID(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TableAvailable, got.Status)

		_, err = store.Tables.FindByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindMany with filter and order", func(t *testing.T) {
		tables, err := store.Tables.FindMany(ctx, Filter{"restaurant_id": uint(1)}, OrderBy("table_number DESC"))
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, 2, tables[0].TableNumber)
	})

	t.Run("UpdateByID", func(t *testing.T) {
		require.NoError(t, store.Tables.UpdateByID(ctx, table.ID, map[string]interface{}{"capacity": 8}))
		got, err := store.Tables.FindByID(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Capacity)

		err = store.Tables.UpdateByID(ctx, 999, map[string]interface{}{"capacity": 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteMany requires a filter", func(t *testing.T) {
		_, err := store.Tables.DeleteMany(ctx, Filter{})
		assert.ErrorIs(t, err, ErrEmptyFilter)

		n, err := store.Tables.DeleteMany(ctx, Filter{"restaurant_id": uint(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		assert.ErrorIs(t, store.Tables.DeleteByID(ctx, table.ID), ErrNotFound)

		remaining, err := store.Tables.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), remaining)
	})
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *Store) error {
		require.NoError(t, tx.Tables.Insert(ctx, &model.Table{RestaurantID: 1, TableNumber: 1, Capacity: 2}))
		return ErrConstraintViolation
	})
	assert.ErrorIs(t, err, ErrConstraintViolation)

	n, err := store.Tables.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Transaction(ctx, func(tx *Store) error {
		return tx.Tables.Insert(ctx, &model.Table{RestaurantID: 1, TableNumber: 1, Capacity: 2})
	}))
	n, err = store.Tables.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFavoriteRepository(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.Favorites.Add(ctx, 1, 10))
	require.NoError(t, store.Favorites.Add(ctx, 1, 10))
	require.NoError(t, store.Favorites.Add(ctx, 1, 11))

	ids, err := store.Favorites.RestaurantIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{10, 11}, ids)

	require.NoError(t, store.Favorites.Remove(ctx, 1, 10))
	ids, err = store.Favorites.RestaurantIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, ids)
}
