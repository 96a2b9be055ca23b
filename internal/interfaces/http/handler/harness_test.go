package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/exoorder/backend/internal/application/catalog"
	customerapp "github.com/exoorder/backend/internal/application/customer"
	orderapp "github.com/exoorder/backend/internal/application/order"
	prefapp "github.com/exoorder/backend/internal/application/preference"
	"github.com/exoorder/backend/internal/domain/order"
	"github.com/exoorder/backend/internal/infrastructure/cache"
	"github.com/exoorder/backend/internal/infrastructure/remote"
	"github.com/exoorder/backend/internal/interfaces/http/middleware"
)

// recordedPost is one write received by the fake backend
type recordedPost struct {
	Action string
	Auth   string
	Body   map[string]any
}

// fakeBackend stands in for the deployed order script
type fakeBackend struct {
	mu       sync.Mutex
	products string
	posts    []recordedPost
}

func (b *fakeBackend) setProducts(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = raw
}

func (b *fakeBackend) recorded() []recordedPost {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedPost(nil), b.posts...)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := r.URL.Query()
	if r.Method == http.MethodGet && q.Get("action") == "products" {
		_, _ = io.WriteString(w, b.products)
		return
	}
	var body map[string]any
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &body)
	b.posts = append(b.posts, recordedPost{Action: q.Get("action"), Auth: q.Get("auth"), Body: body})
	_, _ = io.WriteString(w, "ok")
}

// testEnv wires real services against the fake backend and an in-memory store
type testEnv struct {
	router   *gin.Engine
	backend  *fakeBackend
	prefs    *prefapp.Service
	forms    *orderapp.FormService
	products *catalogapp.ProductService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetupValidator()
	logger := zap.NewNop()

	backend := &fakeBackend{products: `["蟻后","巨山蟻"]`}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.Config{BaseURL: srv.URL + "/exec", Timeout: 2 * time.Second}, logger)
	require.NoError(t, err)

	prefs := prefapp.NewService(cache.NewInMemoryPreferenceStore(), logger)
	require.NoError(t, prefs.Load(context.Background()))

	banks := order.DefaultBankDirectory()
	forms := orderapp.NewFormService(
		orderapp.NewRegistry(time.Hour, time.Now),
		banks,
		orderapp.NewSubmitter(client, banks, logger),
		prefs,
		logger,
	)
	forms.SetClock(func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.Local) })
	products := catalogapp.NewProductService(client, prefs, logger)
	customers := customerapp.NewService(client, prefs, logger)

	formHandler := NewOrderFormHandler(forms)
	catalogHandler := NewCatalogHandler(products)
	settingsHandler := NewSettingsHandler(prefs)
	customerHandler := NewCustomerHandler(customers)
	bankHandler := NewBankHandler(banks)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.GET("/settings/api-key", settingsHandler.GetAPIKey)
	api.PUT("/settings/api-key", settingsHandler.SetAPIKey)
	api.GET("/catalog/products", catalogHandler.ListProducts)
	api.POST("/catalog/products/refresh", catalogHandler.Refresh)
	api.GET("/banks", bankHandler.List)
	api.POST("/customers", customerHandler.Submit)

	f := api.Group("/orders/forms")
	f.POST("", formHandler.Create)
	f.GET("/:id", formHandler.Get)
	f.PATCH("/:id", formHandler.Update)
	f.DELETE("/:id", formHandler.Discard)
	f.POST("/:id/items", formHandler.AddLineItem)
	f.PATCH("/:id/items/:itemId", formHandler.UpdateLineItem)
	f.DELETE("/:id/items/:itemId", formHandler.RemoveLineItem)
	f.GET("/:id/preview", formHandler.Preview)
	f.GET("/:id/backup", formHandler.Backup)
	f.POST("/:id/import", formHandler.Import)
	f.POST("/:id/submit", formHandler.Submit)

	return &testEnv{router: r, backend: backend, prefs: prefs, forms: forms, products: products}
}

// do sends a request; a string body is sent as is, anything else as JSON
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}
