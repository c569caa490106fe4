// Package dbtest starts a migrated Postgres for repository tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"repairhub-backend/internal/infrastructure/database"
)

// EnvDatabaseURL points the tests at an existing database instead of a container.
const EnvDatabaseURL = "TEST_DATABASE_URL"

const postgresImage = "postgres:16-alpine"

// SetupPostgresTest returns a pool on a migrated, empty database.
// Skips when neither TEST_DATABASE_URL nor a container runtime is available.
func SetupPostgresTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres tests skipped in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "failed to open pool")
	t.Cleanup(pool.Close)

	_, err = database.ApplyMigrations(ctx, pool, MigrationsDir())
	require.NoError(t, err, "failed to apply migrations")

	CleanDatabase(t, pool)
	return pool
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("repairhub_test"),
		postgres.WithUsername("repairhub"),
		postgres.WithPassword("repairhub"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// MigrationsDir resolves the repository's migrations/ directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

// CleanDatabase empties every application table.
func CleanDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE discount_services, discounts, service_prices,
			repair_services, device_models, device_series, brands
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err, "failed to clean database")
}

// Catalog holds the ids inserted by SeedCatalog.
type Catalog struct {
	BrandID  uuid.UUID
	SeriesID uuid.UUID
	ModelID  uuid.UUID
	ServiceA uuid.UUID
	ServiceB uuid.UUID
}

// SeedCatalog inserts one brand/series/model and two services priced for it.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) Catalog {
	t.Helper()

	ctx := context.Background()
	c := Catalog{
		BrandID:  uuid.New(),
		SeriesID: uuid.New(),
		ModelID:  uuid.New(),
		ServiceA: uuid.New(),
		ServiceB: uuid.New(),
	}

	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO brands (id, name) VALUES ($1, $2)`, []any{c.BrandID, "Apple " + c.BrandID.String()[:8]}},
		{`INSERT INTO device_series (id, brand_id, name) VALUES ($1, $2, 'iPhone 15')`, []any{c.SeriesID, c.BrandID}},
		{`INSERT INTO device_models (id, brand_id, series_id, name) VALUES ($1, $2, $3, 'iPhone 15 Pro')`, []any{c.ModelID, c.BrandID, c.SeriesID}},
		{`INSERT INTO repair_services (id, name) VALUES ($1, 'Screen replacement'), ($2, 'Battery replacement')`, []any{c.ServiceA, c.ServiceB}},
		{`INSERT INTO service_prices (service_id, model_id, price) VALUES ($1, $3, $4), ($2, $3, $5)`,
			[]any{c.ServiceA, c.ServiceB, c.ModelID, decimal.NewFromInt(3_500_000), decimal.NewFromInt(1_200_000)}},
	}
	for _, s := range stmts {
		_, err := pool.Exec(ctx, s.sql, s.args...)
		require.NoError(t, err, "failed to seed catalog")
	}
	return c
}
