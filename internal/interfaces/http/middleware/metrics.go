package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

const unmatchedRoute = "unknown"

var (
	attrStatusClass    = attribute.Key("http.status_class")
	responseSizeBounds = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
)

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	size     *telemetry.Histogram
	inflight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		errs []error
		err  error
	)
	in.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}")
	errs = append(errs, err)
	in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "Time spent serving HTTP requests",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	errs = append(errs, err)
	in.size, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body sizes",
		Unit:        "By",
		Boundaries:  responseSizeBounds,
	})
	errs = append(errs, err)
	in.inflight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests on meter. Requests are labelled by route pattern so form ids do
// not become label values. A nil meter disables the middleware.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	passthrough := func(c *gin.Context) { c.Next() }
	if meter == nil {
		return passthrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		logger.Warn("HTTP metrics disabled", zap.Error(err))
		return passthrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inflight.Add(ctx, 1)
		defer in.inflight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		in.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(status))...)
		in.latency.RecordDuration(ctx, time.Since(start), append(attrs, attrStatusClass.String(StatusGroup(status)))...)
		if n := c.Writer.Size(); n > 0 {
			in.size.Record(ctx, float64(n), attrs...)
		}
	}
}

// StatusGroup buckets a status code into its class ("2xx", "4xx", ...)
func StatusGroup(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	case statusCode >= 300:
		return "3xx"
	case statusCode >= 200:
		return "2xx"
	default:
		return "other"
	}
}
