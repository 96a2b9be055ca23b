package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exoorder/backend/internal/domain/shared"
)

func TestPreconditionFailure(t *testing.T) {
	t.Run("domain error keeps message and field", func(t *testing.T) {
		o := PreconditionFailure(shared.NewValidationError("customer_id", "Customer ID is required"))
		assert.Equal(t, StatusPreconditionFailure, o.Status)
		assert.Equal(t, "Customer ID is required", o.Reason)
		assert.Equal(t, "customer_id", o.Field)
		assert.False(t, o.Succeeded())
	})

	t.Run("plain error uses its text", func(t *testing.T) {
		o := PreconditionFailure(errors.New("boom"))
		assert.Equal(t, "boom", o.Reason)
		assert.Empty(t, o.Field)
	})
}

func TestDeliver(t *testing.T) {
	t.Run("clean send", func(t *testing.T) {
		o := Deliver(context.Background(), zap.NewNop(), "add_order", func(context.Context) error { return nil })
		assert.True(t, o.Succeeded())
		assert.Empty(t, o.TransportAnomaly)
	})

	t.Run("transport failure is still a success", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		o := Deliver(context.Background(), zap.New(core), "add_order", func(context.Context) error {
			return errors.New("connection refused")
		})

		assert.True(t, o.Succeeded())
		assert.Equal(t, "connection refused", o.TransportAnomaly)
		entries := logs.FilterField(zap.String("action", "add_order")).All()
		assert.Len(t, entries, 1)
	})
}
