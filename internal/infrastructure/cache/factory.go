package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/preference"
	"github.com/exoorder/backend/internal/infrastructure/config"
	"github.com/exoorder/backend/internal/infrastructure/logger"
	"github.com/exoorder/backend/internal/infrastructure/migration"
	"github.com/exoorder/backend/internal/infrastructure/persistence"
	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

// PreferenceStoreFactory builds the preference store selected by configuration
type PreferenceStoreFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	dbMetrics             *telemetry.DBMetrics
	allowInMemoryFallback bool
}

// PreferenceStoreFactoryOption configures the factory
type PreferenceStoreFactoryOption func(*PreferenceStoreFactory)

// WithLogger sets the logger for the factory and the stores it opens
func WithLogger(l *zap.Logger) PreferenceStoreFactoryOption {
	return func(f *PreferenceStoreFactory) {
		f.logger = l
	}
}

// WithInMemoryFallback controls whether an unreachable backend degrades to
// the in-memory store. Defaults to storage.fallback_to_memory.
func WithInMemoryFallback(allow bool) PreferenceStoreFactoryOption {
	return func(f *PreferenceStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithDBMetrics records query metrics on the database backend
func WithDBMetrics(m *telemetry.DBMetrics) PreferenceStoreFactoryOption {
	return func(f *PreferenceStoreFactory) {
		f.dbMetrics = m
	}
}

// NewPreferenceStoreFactory creates a factory for cfg
func NewPreferenceStoreFactory(cfg *config.Config, opts ...PreferenceStoreFactoryOption) *PreferenceStoreFactory {
	f := &PreferenceStoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Storage.FallbackToMemory,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore opens the configured backend, falling back to memory when allowed
func (f *PreferenceStoreFactory) CreateStore(ctx context.Context) (preference.Store, error) {
	var (
		store preference.Store
		err   error
	)
	switch f.cfg.Storage.Backend {
	case config.StorageMemory:
		f.logger.Info("Using in-memory preference store")
		return NewInMemoryPreferenceStore(), nil
	case config.StorageRedis:
		store, err = NewRedisPreferenceStore(ctx, f.cfg.Redis)
	case config.StorageDatabase, "":
		store, err = f.createDatabaseStore(ctx)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", f.cfg.Storage.Backend)
	}

	if err == nil {
		f.logger.Info("Preference store ready", zap.String("backend", f.cfg.Storage.Backend))
		return store, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("preference store %q unavailable: %w", f.cfg.Storage.Backend, err)
	}

	f.logger.Warn("Preference backend unavailable, falling back to in-memory store; "+
		"the API key and product cache will not survive a restart",
		zap.String("backend", f.cfg.Storage.Backend),
		zap.Error(err),
	)
	return NewInMemoryPreferenceStore(), nil
}

func (f *PreferenceStoreFactory) createDatabaseStore(ctx context.Context) (preference.Store, error) {
	dbCfg := &f.cfg.Database
	if dbCfg.AutoMigrate {
		if err := migration.UpFromConfig(dbCfg, f.logger.Named("migration")); err != nil {
			return nil, err
		}
	}

	database, err := persistence.NewDatabase(ctx, dbCfg,
		persistence.WithLogger(f.logger, logger.MapGormLogLevel(f.cfg.Log.Level)))
	if err != nil {
		return nil, err
	}

	err = telemetry.InstrumentDB(database.DB, telemetry.DBTelemetryConfig{
		Tracing: f.cfg.Telemetry.Enabled,
		DBName:  dbCfg.Driver,
	}, f.dbMetrics, f.logger)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return persistence.NewDatabasePreferenceStore(database), nil
}
