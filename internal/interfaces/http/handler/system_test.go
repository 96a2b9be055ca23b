package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

// MockStorePinger implements StorePinger for testing
type MockStorePinger struct {
	mock.Mock
}

func (m *MockStorePinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixedForms int

func (f fixedForms) ActiveForms() int { return int(f) }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		store := new(MockStorePinger)
		store.On("Ping", mock.Anything).Return(nil)
		h := NewSystemHandler("exo-order", "test", store, fixedForms(2))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		h.Health(c)

		require.Equal(t, http.StatusOK, w.Code)
		var health dto.HealthResponse
		decodeData(t, w, &health)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, 2, health.ActiveForms)
		store.AssertExpectations(t)
	})

	t.Run("store down", func(t *testing.T) {
		store := new(MockStorePinger)
		store.On("Ping", mock.Anything).Return(errors.New("redis: connection refused"))
		h := NewSystemHandler("exo-order", "test", store, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		h.Health(c)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("exo-order", "1.2.0", new(MockStorePinger), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decodeData(t, w, &info)
	assert.Equal(t, "exo-order", info.Name)
	assert.Equal(t, "1.2.0", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
