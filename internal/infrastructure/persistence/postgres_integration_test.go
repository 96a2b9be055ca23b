package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/preference"
	"github.com/exoorder/backend/internal/infrastructure/config"
	"github.com/exoorder/backend/internal/infrastructure/migration"
	"github.com/exoorder/backend/internal/infrastructure/persistence"
)

func startPostgres(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("exo_order_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "exo_order_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}
}

func TestPostgresPreferenceStore(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	require.NoError(t, migration.UpFromConfig(cfg, zap.NewNop()))

	database, err := persistence.NewDatabase(ctx, cfg)
	require.NoError(t, err)
	store := persistence.NewDatabasePreferenceStore(database)
	defer store.Close()

	_, err = store.Get(ctx, preference.KeyAPIKey)
	require.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, store.Set(ctx, preference.KeyAPIKey, "k1"))
	require.NoError(t, store.Set(ctx, preference.KeyAPIKey, "k2"))

	value, err := store.Get(ctx, preference.KeyAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "k2", value)
	assert.NoError(t, store.Ping(ctx))
}
