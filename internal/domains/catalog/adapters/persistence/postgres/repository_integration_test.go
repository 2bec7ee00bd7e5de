//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/persistence/postgres"
	"github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	"github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	"github.com/DewinU/backend-DSI/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// Run migrations
	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := catalogpostgres.NewRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct(0, "Coffee", "SKU-COFFEE", decimal.RequireFromString("5.00"), 10, []string{"hot", "drink"})
	require.NoError(t, err)

	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	retrieved, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", retrieved.Name)
	assert.Equal(t, "SKU-COFFEE", retrieved.SKU)
	assert.True(t, retrieved.UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, int32(10), retrieved.StockOnHand)
	assert.Equal(t, []string{"hot", "drink"}, retrieved.Tags)
}

func TestPostgresRepository_SaveUpsertsExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := catalogpostgres.NewRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct(0, "Coffee", "SKU-COFFEE", decimal.RequireFromString("5.00"), 10, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)

	require.NoError(t, saved.Rename("Espresso"))
	require.NoError(t, saved.UpdatePrice(decimal.RequireFromString("6.50")))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	retrieved, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espresso", retrieved.Name)
	assert.True(t, retrieved.UnitPrice.Equal(decimal.RequireFromString("6.50")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostgresRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := catalogpostgres.NewRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct(0, "Coffee", "SKU-COFFEE", decimal.RequireFromString("5.00"), 10, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.GetByID(ctx, saved.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
}
