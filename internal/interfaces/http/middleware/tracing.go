package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName names the server in spans
	ServiceName string
	// Enabled controls whether tracing is active
	Enabled bool
	// TracerProvider overrides the global provider when set
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "exo-order",
		Enabled:     true,
	}
}

// Tracing wraps otelgin and tags the server span with the request id and
// the order form id. Responses with status 4xx and above are marked as errors.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds request attributes to the active span and marks error
// responses. It must run after Tracing.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := getRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if formID := c.Param("id"); formID != "" {
				span.SetAttributes(attribute.String(telemetry.SpanAttrFormID, formID))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, "Internal Server Error")
		} else {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
