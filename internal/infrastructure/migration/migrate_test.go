package migration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/infrastructure/config"
)

func sqliteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "exo.db"),
	}
}

func tableExists(t *testing.T, cfg *config.DatabaseConfig) bool {
	t.Helper()
	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'preferences'`).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestList(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		names, err := List(driver)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"000001_create_preferences.down.sql",
			"000001_create_preferences.up.sql",
		}, names, driver)
	}

	_, err := List("mysql")
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrator_SQLiteUpDown(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := Open(cfg)
	require.NoError(t, err)
	m, err := New(db, cfg.Driver, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "second Up is a no-op")
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.True(t, tableExists(t, cfg))

	require.NoError(t, m.Steps(-1))
	assert.False(t, tableExists(t, cfg))

	require.NoError(t, m.Steps(1))
	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, cfg))
}

func TestUpFromConfig(t *testing.T) {
	cfg := sqliteConfig(t)

	require.NoError(t, UpFromConfig(cfg, zap.NewNop()))
	assert.True(t, tableExists(t, cfg))
	require.NoError(t, UpFromConfig(cfg, zap.NewNop()))
}
