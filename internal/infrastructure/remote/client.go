// Package remote talks to the script-hosted order backend. Reads return
// JSON; writes are fire-and-forget and their responses are never trusted.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/customer"
	"github.com/exoorder/backend/internal/domain/order"
)

// maxResponseSize caps how much of a response body is read (1MB)
const maxResponseSize = 1 << 20

const (
	actionProducts    = "products"
	actionAddOrder    = "add_order"
	actionAddCustomer = "add_customer"

	contentTypeText = "text/plain;charset=utf-8"
)

// ErrUnexpectedResponse is returned when the product list is not a JSON array of strings
var ErrUnexpectedResponse = errors.New("remote: unexpected response shape")

// Client is the HTTP client for the remote backend
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]string]
	logger     *zap.Logger
}

// NewClient creates a new Client. Requests are traced through otelhttp.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:    "remote-products",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c, nil
}

// FetchProducts returns the product list. Any response that is not a JSON
// array of strings is an error, as is an open circuit breaker.
func (c *Client) FetchProducts(ctx context.Context) ([]string, error) {
	return c.breaker.Execute(func() ([]string, error) {
		return c.fetchProducts(ctx)
	})
}

func (c *Client) fetchProducts(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.actionURL(actionProducts, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read products response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	var products []string
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, describeBody(body))
	}
	if products == nil {
		return nil, fmt.Errorf("%w: null", ErrUnexpectedResponse)
	}
	return products, nil
}

// AddOrder posts an order. The response is drained and ignored; only a
// failure to send is reported.
func (c *Client) AddOrder(ctx context.Context, authKey string, payload order.Payload) error {
	return c.post(ctx, actionAddOrder, authKey, payload)
}

// AddCustomer posts a customer. The response is drained and ignored; only a
// failure to send is reported.
func (c *Client) AddCustomer(ctx context.Context, authKey string, payload customer.Payload) error {
	return c.post(ctx, actionAddCustomer, authKey, payload)
}

func (c *Client) post(ctx context.Context, action, authKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.actionURL(action, authKey), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", contentTypeText)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", action, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	c.logger.Debug("Remote write sent",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode))
	return nil
}

// actionURL appends the action and, when given, the auth key to the base URL
func (c *Client) actionURL(action, authKey string) string {
	u, _ := url.Parse(c.config.BaseURL)
	q := u.Query()
	q.Set("action", action)
	if authKey != "" {
		q.Set("auth", authKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// BreakerState reports the product fetch circuit breaker state
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func describeBody(body []byte) string {
	const maxLen = 120
	s := string(bytes.TrimSpace(body))
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
