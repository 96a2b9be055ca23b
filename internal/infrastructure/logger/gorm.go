package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm's statement log into zap. Statements are traced at
// debug, slow ones at warn and failures at error.
type GormLogger struct {
	logger                    *zap.Logger
	logLevel                  gormlogger.LogLevel
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the statement duration reported as slow; zero disables it
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithIgnoreRecordNotFoundError drops ErrRecordNotFound from the error log.
// Enabled by default: the preference store treats a missing key as normal.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.ignoreRecordNotFoundError = ignore }
}

// NewGormLogger creates a gorm logger named "gorm"
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:                    zapLogger.Named("gorm"),
		logLevel:                  level,
		slowThreshold:             defaultSlowQuery,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, need gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.logLevel < need {
		return
	}
	WithTraceContext(ctx, l.logger).Log(lvl, fmt.Sprintf(msg, data...))
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl   zapcore.Level
		msg   string
		extra zap.Field
	)
	switch {
	case err != nil:
		if l.logLevel < gormlogger.Error || (l.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound)) {
			return
		}
		lvl, msg, extra = zapcore.ErrorLevel, "SQL Error", zap.Error(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.logLevel < gormlogger.Warn {
			return
		}
		lvl, msg, extra = zapcore.WarnLevel, "Slow SQL", zap.Duration("threshold", l.slowThreshold)
	default:
		if l.logLevel < gormlogger.Info {
			return
		}
		lvl, msg, extra = zapcore.DebugLevel, "SQL Query", zap.Skip()
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
		extra,
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	WithTraceContext(ctx, l.logger).Log(lvl, msg, fields...)
}

// MapGormLogLevel maps an application log level to a gorm log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
