package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return tp, sr
}

func serverSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()

	for _, span := range sr.Ended() {
		if span.SpanKind() == trace.SpanKindServer {
			return span
		}
	}
	require.Fail(t, "server span not found")
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracedRouter(tp trace.TracerProvider) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(TracingConfig{ServiceName: "test-service", Enabled: true, TracerProvider: tp}))
	router.Use(SpanEnricher())
	return router
}

func TestTracing_Disabled(t *testing.T) {
	_, sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.Use(SpanEnricher())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RequestAndFormAttributes(t *testing.T) {
	tp, sr := setupTestTracer(t)

	router := tracedRouter(tp)
	router.GET("/forms/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/forms/0d5a4a7e-9c7e-4c43-a4f8-7f6b0fd1c001", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	span := serverSpan(t, sr)
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-123", requestID.AsString())

	formID, ok := spanAttr(span, "form_id")
	require.True(t, ok)
	assert.Equal(t, "0d5a4a7e-9c7e-4c43-a4f8-7f6b0fd1c001", formID.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_MarksClientErrors(t *testing.T) {
	tp, sr := setupTestTracer(t)

	router := tracedRouter(tp)
	router.POST("/submit", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))

	require.Equal(t, http.StatusConflict, w.Code)
	span := serverSpan(t, sr)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Conflict", span.Status().Description)
}
