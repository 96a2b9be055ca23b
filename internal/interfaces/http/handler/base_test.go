package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoorder/backend/internal/domain/shared"
	"github.com/exoorder/backend/internal/infrastructure/logger"
	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "from gin context",
			setup: func(c *gin.Context) { c.Set(logger.GinRequestIDKey, "ctx-id") },
			want:  "ctx-id",
		},
		{
			name:  "from header",
			setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "header-id") },
			want:  "header-id",
		},
		{
			name: "context wins over header",
			setup: func(c *gin.Context) {
				c.Set(logger.GinRequestIDKey, "ctx-id")
				c.Request.Header.Set("X-Request-ID", "header-id")
			},
			want: "ctx-id",
		},
		{
			name:  "empty",
			setup: func(*gin.Context) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.want, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        shared.NewValidationError("customer_id", "Customer ID is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantField:  "customer_id",
			wantMsg:    "Customer ID is required",
		},
		{
			name:       "parse",
			err:        shared.NewParseError("Backup is not a JSON object", errors.New("eof")),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeParse,
			wantMsg:    "Backup is not a JSON object",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("load form: %w", shared.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
			wantMsg:    "Resource not found",
		},
		{
			name:       "conflict",
			err:        shared.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeConflict,
			wantMsg:    "Operation conflicts with the current state",
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantField, resp.Error.Field)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h := &BaseHandler{}
	_, ok := h.parseUUIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
}
