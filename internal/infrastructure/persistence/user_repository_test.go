package persistence

import (
	"context"
	"testing"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&identity.User{}, &identity.Farm{})
	require.NoError(t, err)

	return db
}

func TestGormUserRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by username", func(t *testing.T) {
		user, err := identity.NewUser("greenacres.admin", "correct-horse-battery")
		require.NoError(t, err)
		require.NoError(t, user.SetEmail("admin@greenacres.example"))

		require.NoError(t, repo.Save(ctx, user))

		found, err := repo.FindByUsername(ctx, "Greenacres.Admin")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "admin@greenacres.example", found.Email)
		assert.Equal(t, identity.UserStatusPending, found.Status)
	})

	t.Run("duplicate username answers already exists", func(t *testing.T) {
		dupe, err := identity.NewUser("greenacres.admin", "another-password")
		require.NoError(t, err)

		err = repo.Save(ctx, dupe)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown id answers not found", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormFarmRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormFarmRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by code regardless of case", func(t *testing.T) {
		farm, err := identity.NewFarm("GREENACRES", "Green Acres Farm")
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, farm))

		found, err := repo.FindByCode(ctx, "greenacres")
		require.NoError(t, err)
		assert.Equal(t, farm.ID, found.ID)
		assert.True(t, found.IsActive())
	})

	t.Run("duplicate code answers already exists", func(t *testing.T) {
		dupe, err := identity.NewFarm("GREENACRES", "Other Farm")
		require.NoError(t, err)

		err = repo.Save(ctx, dupe)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown code answers not found", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "HILLTOP")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
