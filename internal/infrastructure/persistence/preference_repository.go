package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exoorder/backend/internal/domain/preference"
	"github.com/exoorder/backend/internal/infrastructure/persistence/models"
)

// GormPreferenceStore implements preference.Store on a SQL table
type GormPreferenceStore struct {
	db    *gorm.DB
	close func() error
	now   func() time.Time
}

var _ preference.Store = (*GormPreferenceStore)(nil)

// NewGormPreferenceStore creates a store on db. Close is a no-op; the
// caller owns the connection.
func NewGormPreferenceStore(db *gorm.DB) *GormPreferenceStore {
	return &GormPreferenceStore{
		db:    db,
		close: func() error { return nil },
		now:   time.Now,
	}
}

// NewDatabasePreferenceStore creates a store that closes database on Close
func NewDatabasePreferenceStore(database *Database) *GormPreferenceStore {
	s := NewGormPreferenceStore(database.DB)
	s.close = database.Close
	return s
}

// Get returns the stored value or preference.ErrNotFound
func (s *GormPreferenceStore) Get(ctx context.Context, key preference.Key) (string, error) {
	var model models.PreferenceModel
	err := s.db.WithContext(ctx).Where("key = ?", string(key)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", preference.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.Value, nil
}

// Set inserts or overwrites the value for key
func (s *GormPreferenceStore) Set(ctx context.Context, key preference.Key, value string) error {
	model := models.PreferenceModel{
		Key:       string(key),
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}

// Ping checks the connection
func (s *GormPreferenceStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection when the store owns it
func (s *GormPreferenceStore) Close() error {
	return s.close()
}
