package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/exoorder/backend/internal/infrastructure/config"
	"github.com/exoorder/backend/internal/infrastructure/logger"
)

// Database holds the gorm connection used by the preference store
type Database struct {
	DB     *gorm.DB
	Driver string
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger   *zap.Logger
	logLevel gormlogger.LogLevel
}

// WithLogger routes gorm logging through zap at the given level
func WithLogger(l *zap.Logger, level gormlogger.LogLevel) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
		o.logLevel = level
	}
}

// Dialector returns the gorm dialector for the configured driver
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.SQLitePath), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDatabase opens and pings a connection for the configured driver
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := databaseOptions{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	var gl gormlogger.Interface = gormlogger.Discard
	if o.logger != nil {
		gl = logger.NewGormLogger(o.logger, o.logLevel)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db, Driver: cfg.Driver}
	if d.Driver == "" {
		d.Driver = config.DriverSQLite
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if d.Driver == config.DriverSQLite {
		// a single writer avoids "database is locked" on concurrent upserts
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := d.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks that the connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
