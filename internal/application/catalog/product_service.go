// Package catalog keeps the advisory product-name list in sync with the
// remote backend.
package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/catalog"
	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

// ProductSource fetches the product list from the remote backend
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]string, error)
}

// ProductCache persists the last fetched list between runs
type ProductCache interface {
	CachedProducts(ctx context.Context) ([]string, error)
	SaveProducts(ctx context.Context, products []string) error
}

// RefreshResult reports a refresh attempt
type RefreshResult struct {
	Products []string `json:"products"`
	// Refreshed is false when the fetch failed and the cached list was kept
	Refreshed        bool      `json:"refreshed"`
	TransportAnomaly string    `json:"transport_anomaly,omitempty"`
	RefreshedAt      time.Time `json:"refreshed_at,omitzero"`
}

// ProductService serves the product list from memory and refreshes it from
// the remote backend. A failed fetch never replaces the cached list.
type ProductService struct {
	source          ProductSource
	cache           ProductCache
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics

	mu          sync.RWMutex
	products    catalog.ProductList
	refreshedAt time.Time
}

// NewProductService creates a new ProductService
func NewProductService(source ProductSource, cache ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ProductService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Start restores the cached list. When the cache is empty a fresh list is
// fetched in the background; the returned channel is closed once that
// fetch is over, or immediately when the cache was used.
func (s *ProductService) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	cached, err := s.cache.CachedProducts(ctx)
	if err != nil {
		s.logger.Warn("Failed to load cached products", zap.Error(err))
	}
	s.mu.Lock()
	s.products = catalog.NewProductList(cached)
	s.mu.Unlock()

	if len(cached) > 0 {
		s.logger.Info("Product list restored from cache", zap.Int("count", len(cached)))
		close(done)
		return done
	}
	go func() {
		defer close(done)
		s.Refresh(ctx)
	}()
	return done
}

// Refresh fetches the list from the remote backend. On success the list is
// replaced and saved; on failure the cached list is kept and the failure is
// reported as a transport anomaly.
func (s *ProductService) Refresh(ctx context.Context) RefreshResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "refresh")
	defer span.End()

	fetched, err := s.source.FetchProducts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Product refresh failed, keeping cached list", zap.Error(err))
		s.recordRefresh(ctx, "anomaly")
		s.mu.RLock()
		defer s.mu.RUnlock()
		return RefreshResult{
			Products:         s.copyLocked(),
			TransportAnomaly: err.Error(),
			RefreshedAt:      s.refreshedAt,
		}
	}

	list := catalog.NewProductList(fetched)
	now := time.Now()
	s.mu.Lock()
	s.products = list
	s.refreshedAt = now
	s.mu.Unlock()

	if err := s.cache.SaveProducts(ctx, list); err != nil {
		s.logger.Warn("Failed to save product cache", zap.Error(err))
	}
	s.recordRefresh(ctx, "ok")
	telemetry.SetAttributes(span, telemetry.SpanAttrProductCount, len(list))
	s.logger.Info("Product list refreshed", zap.Int("count", len(list)))

	return RefreshResult{Products: []string(list), Refreshed: true, RefreshedAt: now}
}

// Products returns the current list
func (s *ProductService) Products() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Suggest returns products matching query, at most limit of them
func (s *ProductService) Suggest(query string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.Suggest(query, limit)
}

func (s *ProductService) copyLocked() []string {
	out := make([]string, len(s.products))
	copy(out, s.products)
	return out
}

func (s *ProductService) recordRefresh(ctx context.Context, result string) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordCatalogRefresh(ctx, result)
	}
}
