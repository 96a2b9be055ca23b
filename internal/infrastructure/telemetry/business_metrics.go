// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks order-entry activity: submissions, their transport
// anomalies, order amounts, catalog refreshes and open form sessions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	submissionTotal     *Counter
	anomalyTotal        *Counter
	orderAmountTotal    *Counter
	catalogRefreshTotal *Counter

	// Gauge metrics (point-in-time values)
	formSessionsActive *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	sessionProvider FormSessionProvider
}

// FormSessionProvider reports how many order forms are open.
// This keeps the telemetry layer independent of the form registry.
type FormSessionProvider interface {
	ActiveForms() int
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	SessionProvider FormSessionProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		sessionProvider: cfg.SessionProvider,
	}

	var err error

	bm.submissionTotal, err = NewCounter(
		cfg.Meter,
		"exo_submission_total",
		"Total number of form submissions by outcome",
		"{submissions}",
	)
	if err != nil {
		return nil, err
	}

	bm.anomalyTotal, err = NewCounter(
		cfg.Meter,
		"exo_submission_transport_anomaly_total",
		"Submissions whose delivery reported a transport failure",
		"{submissions}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"exo_order_amount_total",
		"Total submitted order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.catalogRefreshTotal, err = NewCounter(
		cfg.Meter,
		"exo_catalog_refresh_total",
		"Product catalog refresh attempts by result",
		"{refreshes}",
	)
	if err != nil {
		return nil, err
	}

	bm.formSessionsActive, err = NewGauge(
		cfg.Meter,
		"exo_form_sessions_active",
		"Number of open order form sessions",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Submission Metrics
// =============================================================================

// FormType labels which form a submission came from.
type FormType string

const (
	FormTypeOrder    FormType = "order"
	FormTypeCustomer FormType = "customer"
)

// RecordSubmission records the outcome status of a submission.
func (bm *BusinessMetrics) RecordSubmission(ctx context.Context, formType FormType, status string) {
	bm.submissionTotal.Inc(ctx,
		AttrFormType.String(string(formType)),
		AttrSubmissionStatus.String(status),
	)
}

// RecordTransportAnomaly records a delivery failure that was swallowed.
func (bm *BusinessMetrics) RecordTransportAnomaly(ctx context.Context, formType FormType) {
	bm.anomalyTotal.Inc(ctx, AttrFormType.String(string(formType)))
}

// RecordOrderAmount records the total of a submitted order.
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	if cents <= 0 {
		return
	}
	bm.orderAmountTotal.Add(ctx, cents)
}

// =============================================================================
// Catalog Metrics
// =============================================================================

// RecordCatalogRefresh records a refresh attempt; result is "ok" or "anomaly".
func (bm *BusinessMetrics) RecordCatalogRefresh(ctx context.Context, result string) {
	bm.catalogRefreshTotal.Inc(ctx, AttrRefreshResult.String(result))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// RecordActiveForms records the number of open form sessions.
func (bm *BusinessMetrics) RecordActiveForms(ctx context.Context, count int) {
	bm.formSessionsActive.Record(ctx, int64(count))
}

// StartPeriodicCollection samples the open form count every interval
// (default: 1 minute). Non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectSessionMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectSessionMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectSessionMetrics(ctx context.Context) {
	if bm.sessionProvider == nil {
		bm.logger.Debug("No session provider configured, skipping session metrics collection")
		return
	}
	bm.RecordActiveForms(ctx, bm.sessionProvider.ActiveForms())
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Business metrics attribute keys
var (
	AttrFormType         = attribute.Key("form_type")
	AttrSubmissionStatus = attribute.Key("submission_status")
	AttrRefreshResult    = attribute.Key("refresh_result")
)
