// Package migration applies the embedded schema migrations with golang-migrate.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/infrastructure/config"
)

//go:embed sql
var migrations embed.FS

// Migrator runs schema migrations for one database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// sqlDriverName maps a configured driver to its database/sql name
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case config.DriverSQLite, "":
		return "sqlite3", nil
	case config.DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens a database/sql connection for the configured driver
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	name, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN()
	if name == "sqlite3" {
		dsn = cfg.SQLitePath
	}
	return sql.Open(name, dsn)
}

// New creates a Migrator for db. The Migrator takes ownership of db and
// closes it in Close.
func New(db *sql.DB, driver string, logger *zap.Logger) (*Migrator, error) {
	name, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	var instance database.Driver
	switch name {
	case "postgres":
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", name, err)
	}

	source, err := iofs.New(migrations, sourceDir(driver))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, name, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

func sourceDir(driver string) string {
	if driver == config.DriverPostgres {
		return "sql/postgres"
	}
	return "sql/sqlite"
}

// List returns the embedded migration file names for driver, sorted
func List(driver string) ([]string, error) {
	if _, err := sqlDriverName(driver); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(migrations, sourceDir(driver))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, _ := m.Version()
	m.logger.Info("Migrations completed", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	err := m.migrate.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	m.logger.Info("Migration steps completed", zap.Int("steps", n))
	return nil
}

// Version returns the applied version, 0 when nothing is applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running it. Used to clear a
// dirty state after a failed migration has been fixed by hand.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database connection
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

// UpFromConfig opens a dedicated connection, applies pending migrations
// and closes it again
func UpFromConfig(cfg *config.DatabaseConfig, logger *zap.Logger) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	m, err := New(db, cfg.Driver, logger)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()
	return m.Up()
}
