// Package preference manages the API key and the cached product list.
// Values are loaded once at start and written through on every change.
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/preference"
)

// Service holds the API key in memory and persists preference changes
type Service struct {
	store  preference.Store
	logger *zap.Logger

	mu     sync.RWMutex
	apiKey string
}

// NewService creates a new preference Service
func NewService(store preference.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Load reads the stored API key. A key that was never saved is not an error.
func (s *Service) Load(ctx context.Context) error {
	key, err := s.store.Get(ctx, preference.KeyAPIKey)
	if err != nil && !errors.Is(err, preference.ErrNotFound) {
		return fmt.Errorf("load api key: %w", err)
	}
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
	s.logger.Info("Preferences loaded", zap.Bool("api_key_configured", key != ""))
	return nil
}

// APIKey returns the current API key, empty when unset
func (s *Service) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetAPIKey replaces the API key and persists it
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if err := s.store.Set(ctx, preference.KeyAPIKey, key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
	s.logger.Info("API key updated", zap.Bool("configured", key != ""))
	return nil
}

// CachedProducts returns the stored product list, or nil when none is stored.
// An unreadable cache is logged and treated as empty.
func (s *Service) CachedProducts(ctx context.Context) ([]string, error) {
	raw, err := s.store.Get(ctx, preference.KeyProductsCache)
	if errors.Is(err, preference.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load product cache: %w", err)
	}
	var products []string
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		s.logger.Warn("Discarding unreadable product cache", zap.Error(err))
		return nil, nil
	}
	return products, nil
}

// SaveProducts persists the product list
func (s *Service) SaveProducts(ctx context.Context, products []string) error {
	if products == nil {
		products = []string{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode product cache: %w", err)
	}
	if err := s.store.Set(ctx, preference.KeyProductsCache, string(data)); err != nil {
		return fmt.Errorf("save product cache: %w", err)
	}
	return nil
}

// Ping checks the backing store
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// MaskAPIKey hides all but the last four characters of key
func MaskAPIKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
