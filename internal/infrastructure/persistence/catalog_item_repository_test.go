package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCatalogItemRepository_FindByIDForFarm(t *testing.T) {
	t.Run("finds item in the farm", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCatalogItemRepository(gormDB)

		itemID := uuid.New()
		farmID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "farm_id", "code", "name", "unit", "list_price", "active"}).
			AddRow(itemID, farmID, "HAY-01", "Hay Bale", "bale", "12.50", true)

		mock.ExpectQuery(`SELECT \* FROM "catalog_items" WHERE id = \$1 AND farm_id = \$2`).
			WithArgs(itemID, farmID, 1).
			WillReturnRows(rows)

		item, err := repo.FindByIDForFarm(context.Background(), itemID, farmID)

		require.NoError(t, err)
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, "HAY-01", item.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item in another farm answers not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCatalogItemRepository(gormDB)

		itemID := uuid.New()
		farmID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "catalog_items" WHERE id = \$1 AND farm_id = \$2`).
			WithArgs(itemID, farmID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByIDForFarm(context.Background(), itemID, farmID)

		assert.Nil(t, item)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCatalogItemRepository_FindByIDsForFarm(t *testing.T) {
	t.Run("empty input skips the query", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCatalogItemRepository(gormDB)

		items, err := repo.FindByIDsForFarm(context.Background(), nil, uuid.New())

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign rows are simply absent", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCatalogItemRepository(gormDB)

		ownID := uuid.New()
		foreignID := uuid.New()
		farmID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "farm_id", "code", "name", "unit", "list_price", "active"}).
			AddRow(ownID, farmID, "HAY-01", "Hay Bale", "bale", "12.50", true)

		mock.ExpectQuery(`SELECT \* FROM "catalog_items" WHERE id IN \(\$1,\$2\) AND farm_id = \$3`).
			WithArgs(ownID, foreignID, farmID).
			WillReturnRows(rows)

		items, err := repo.FindByIDsForFarm(context.Background(), []uuid.UUID{ownID, foreignID}, farmID)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, ownID, items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMembershipRepository_FindActiveByFarmAndUser(t *testing.T) {
	t.Run("revoked membership is invisible", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormMembershipRepository(gormDB)

		farmID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE farm_id = \$1 AND user_id = \$2 AND active = \$3`).
			WithArgs(farmID, userID, true, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		membership, err := repo.FindActiveByFarmAndUser(context.Background(), farmID, userID)

		assert.Nil(t, membership)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("active membership is returned", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormMembershipRepository(gormDB)

		farmID := uuid.New()
		userID := uuid.New()
		membershipID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "farm_id", "user_id", "role", "active"}).
			AddRow(membershipID, farmID, userID, "manager", true)

		mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE farm_id = \$1 AND user_id = \$2 AND active = \$3`).
			WithArgs(farmID, userID, true, 1).
			WillReturnRows(rows)

		membership, err := repo.FindActiveByFarmAndUser(context.Background(), farmID, userID)

		require.NoError(t, err)
		assert.Equal(t, membershipID, membership.ID)
		assert.True(t, membership.Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
