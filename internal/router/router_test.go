package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"belekbox/internal/handler"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct{}

func (stubProducts) ListAvailable(context.Context) ([]model.Product, error) {
	return []model.Product{{ID: 1, Name: "Winter box", Price: 1500, IsAvailable: true}}, nil
}

type stubOrders struct{}

func (stubOrders) CreateOrder(context.Context, *model.OrderRequest) (*model.OrderResponse, error) {
	return &model.OrderResponse{Success: true, OrderNumber: "BB-20241205-ABC123"}, nil
}

type stubAdmin struct{ token string }

func (s stubAdmin) Login(context.Context, string) (string, error) { return s.token, nil }
func (s stubAdmin) Authorize(token string) bool                   { return token == s.token }
func (stubAdmin) ListProducts(context.Context) ([]model.Product, error) {
	return []model.Product{}, nil
}
func (stubAdmin) CreateProduct(context.Context, model.ProductInput, *model.Image) (int64, error) {
	return 1, nil
}
func (stubAdmin) UpdateProduct(context.Context, int64, model.ProductInput, *model.Image) error {
	return nil
}
func (stubAdmin) DeleteProduct(context.Context, int64) error  { return nil }
func (stubAdmin) HideAll(context.Context) (int64, error)      { return 0, nil }
func (stubAdmin) ShowAll(context.Context) (int64, error)      { return 0, nil }
func (stubAdmin) ListOrders(context.Context) ([]model.Order, error) {
	return []model.Order{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	logger := zerolog.Nop()
	dir := t.TempDir()
	admin := stubAdmin{token: "s3cret"}

	h := New(Handlers{
		Products: handler.NewProductHandler(stubProducts{}, logger),
		Orders:   handler.NewOrderHandler(stubOrders{}, logger),
		Admin:    handler.NewAdminHandler(admin, logger),
	}, admin, Options{UploadDir: dir, UploadURLPrefix: "/uploads"}, logger)

	return h, dir
}

func TestRouter_Routes(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/api/health", expectedStatus: http.StatusOK},
		{name: "Public products", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "Wrong method", method: http.MethodDelete, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Admin without token", method: http.MethodGet, path: "/api/admin/products", expectedStatus: http.StatusUnauthorized},
		{name: "Admin with token", method: http.MethodGet, path: "/api/admin/products", token: "s3cret", expectedStatus: http.StatusOK},
		{name: "Admin orders", method: http.MethodGet, path: "/api/admin/orders", token: "s3cret", expectedStatus: http.StatusOK},
		{name: "Admin delete", method: http.MethodDelete, path: "/api/admin/products/4", token: "s3cret", expectedStatus: http.StatusOK},
		{name: "Hide all needs token", method: http.MethodPost, path: "/api/admin/hide-all", token: "nope", expectedStatus: http.StatusUnauthorized},
		{name: "Preflight", method: http.MethodOptions, path: "/api/admin/products", expectedStatus: http.StatusNoContent},
		{name: "Unknown", method: http.MethodGet, path: "/api/unknown", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_ServesUploads(t *testing.T) {
	h, dir := newTestRouter(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products", "a.jpg"), []byte("jpeg"), 0o644))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/products/a.jpg", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
}
