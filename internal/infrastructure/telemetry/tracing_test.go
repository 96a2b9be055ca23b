package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "catalog", "refresh",
		SpanAttrProductCount, 12,
		"ignored-odd-key",
	)
	SetAttributes(span, SpanAttrOutcome, "refreshed", 42, "non-string key dropped")
	AddEvent(span, "cache_saved", "entries", int64(12))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "catalog.refresh", s.Name())
	assert.Equal(t, TracerName, s.InstrumentationScope().Name)

	attrs := attrMap(s.Attributes())
	assert.Equal(t, int64(12), attrs[SpanAttrProductCount].AsInt64())
	assert.Equal(t, "refreshed", attrs[SpanAttrOutcome].AsString())
	assert.Len(t, attrs, 2)

	require.Len(t, s.Events(), 1)
	assert.Equal(t, "cache_saved", s.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "customer", "submit")
	RecordError(span, nil)
	RecordError(span, errors.New("remote unreachable"))
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "remote unreachable", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestSpanHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "e")
	})
}

type stringerID string

func (s stringerID) String() string { return "id:" + string(s) }

func TestToAttribute(t *testing.T) {
	tests := []struct {
		value any
		want  attribute.Value
	}{
		{"text", attribute.StringValue("text")},
		{7, attribute.IntValue(7)},
		{int64(8), attribute.Int64Value(8)},
		{1.5, attribute.Float64Value(1.5)},
		{true, attribute.BoolValue(true)},
		{[]string{"A", "B"}, attribute.StringSliceValue([]string{"A", "B"})},
		{stringerID("7"), attribute.StringValue("id:7")},
		{struct{ N int }{3}, attribute.StringValue("{3}")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toAttribute("k", tt.value).Value)
	}
}
