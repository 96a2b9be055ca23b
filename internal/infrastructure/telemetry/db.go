package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTelemetryConfig controls query tracing and metrics on a gorm connection.
type DBTelemetryConfig struct {
	Tracing            bool
	DBName             string
	IncludeQueryVars   bool // record bound parameters on spans
	SlowQueryThreshold time.Duration
}

// DBMetrics counts and times the queries issued through gorm.
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowThreshold  time.Duration
}

// NewDBMetrics creates the db_query_* instruments.
func NewDBMetrics(meter metric.Meter, slowThreshold time.Duration) (*DBMetrics, error) {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	queryTotal, err := NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Database queries above the slow threshold", "{query}")
	if err != nil {
		return nil, err
	}

	return &DBMetrics{
		queryTotal:     queryTotal,
		queryDuration:  queryDuration,
		slowQueryTotal: slowQueryTotal,
		slowThreshold:  slowThreshold,
	}, nil
}

// RecordQuery records one finished statement.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, d time.Duration) {
	attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(table)}
	m.queryTotal.Inc(ctx, attrs...)
	m.queryDuration.RecordDuration(ctx, d, attrs...)
	if d >= m.slowThreshold {
		m.slowQueryTotal.Inc(ctx, attrs...)
	}
}

type dbStartKey struct{}

// Name implements gorm.Plugin.
func (m *DBMetrics) Name() string {
	return "exo:db_metrics"
}

// Initialize implements gorm.Plugin by timing every statement family.
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, dbStartKey{}, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			if ctx == nil {
				return
			}
			start, ok := ctx.Value(dbStartKey{}).(time.Time)
			if !ok {
				return
			}
			op := operation
			if op == "" {
				op = detectOperation(tx.Statement.SQL.String())
			}
			m.RecordQuery(ctx, op, tx.Statement.Table, time.Since(start))
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("exo:metrics_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("exo:metrics_after_create", after("INSERT")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("exo:metrics_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("exo:metrics_after_query", after("SELECT")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("exo:metrics_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("exo:metrics_after_update", after("UPDATE")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("exo:metrics_before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("exo:metrics_after_delete", after("DELETE")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("exo:metrics_before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("exo:metrics_after_raw", after(""))
}

func detectOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// InstrumentDB registers otelgorm tracing (when enabled) and, when metrics
// is non-nil, the query metrics plugin.
func InstrumentDB(db *gorm.DB, cfg DBTelemetryConfig, metrics *DBMetrics, logger *zap.Logger) error {
	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.IncludeQueryVars {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}
	if metrics != nil {
		if err := db.Use(metrics); err != nil {
			return err
		}
	}
	logger.Debug("Database instrumentation registered",
		zap.Bool("tracing", cfg.Tracing),
		zap.Bool("metrics", metrics != nil))
	return nil
}
