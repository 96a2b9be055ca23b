package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/customer"
	"github.com/exoorder/backend/internal/domain/order"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/macros/s/test/exec", Timeout: 2 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"valid", Config{BaseURL: "https://script.google.com/macros/s/abc/exec"}, nil},
		{"missing url", Config{}, ErrConfigMissingBaseURL},
		{"relative url", Config{BaseURL: "/exec"}, ErrConfigInvalidBaseURL},
		{"unsupported scheme", Config{BaseURL: "ftp://host/exec"}, ErrConfigInvalidBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 15*time.Second, tt.config.Timeout)
			assert.Equal(t, uint32(3), tt.config.BreakerFailures)
		})
	}
}

// ---------------------------------------------------------------------------
// Product Tests
// ---------------------------------------------------------------------------

func TestClient_FetchProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/macros/s/test/exec", r.URL.Path)
			assert.Equal(t, "products", r.URL.Query().Get("action"))
			assert.Empty(t, r.URL.Query().Get("auth"))
			_, _ = w.Write([]byte(`["蟻后","工蟻"]`))
		})

		products, err := c.FetchProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"蟻后", "工蟻"}, products)
	})

	shapes := map[string]string{
		"object":  `{"status":"error","message":"quota"}`,
		"html":    `<html>Sign in</html>`,
		"null":    `null`,
		"numbers": `[1,2,3]`,
	}
	for name, body := range shapes {
		t.Run("rejects "+name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.FetchProducts(ctx)
			assert.ErrorIs(t, err, ErrUnexpectedResponse)
		})
	}

	t.Run("rejects non-200", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := c.FetchProducts(ctx)
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})

		for i := 0; i < 3; i++ {
			_, err := c.FetchProducts(ctx)
			assert.ErrorIs(t, err, ErrUnexpectedResponse)
		}
		_, err := c.FetchProducts(ctx)
		assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, "open", c.BreakerState())
	})
}

// ---------------------------------------------------------------------------
// Write Tests
// ---------------------------------------------------------------------------

func TestClient_AddOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("posts text/plain JSON with the auth key", func(t *testing.T) {
		var got order.Payload
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "add_order", r.URL.Query().Get("action"))
			assert.Equal(t, "k&y=1", r.URL.Query().Get("auth"))
			assert.Equal(t, "text/plain;charset=utf-8", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &got))
			_, _ = w.Write([]byte(`{"status":"success"}`))
		})

		err := c.AddOrder(ctx, "k&y=1", order.Payload{Customer: "cust-1", ReceiveAccount: "01057-Chen", Items: []any{}})
		require.NoError(t, err)
		assert.Equal(t, "cust-1", got.Customer)
		assert.Equal(t, "01057-Chen", got.ReceiveAccount)
	})

	t.Run("error responses are not failures", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"status":"error"}`))
		})
		assert.NoError(t, c.AddOrder(ctx, "k", order.Payload{}))
	})

	t.Run("connection failure is reported", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
		require.NoError(t, err)

		assert.Error(t, c.AddOrder(ctx, "k", order.Payload{}))
	})
}

func TestClient_AddCustomer(t *testing.T) {
	var got customer.Payload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "add_customer", r.URL.Query().Get("action"))
		assert.Equal(t, "secret", r.URL.Query().Get("auth"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
	})

	err := c.AddCustomer(context.Background(), "secret", customer.Payload{Name: "王小明", NickName: "@ming"})
	require.NoError(t, err)
	assert.Equal(t, "@ming", got.NickName)
}
