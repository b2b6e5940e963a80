package router

import (
	"net/http"

	"belekbox/internal/handler"
	"belekbox/internal/middleware"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers bundles the HTTP handlers served by the API.
type Handlers struct {
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// Options configures static file serving.
type Options struct {
	// UploadDir is served under UploadURLPrefix.
	UploadDir       string
	UploadURLPrefix string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth middleware.Authorizer, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET /api/health", handler.Health)
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("POST /api/orders", h.Orders.Create)
	mux.HandleFunc("POST /api/admin/login", h.Admin.Login)

	// Admin endpoints require a bearer token
	admin := middleware.AdminAuth(auth, logger)
	mux.Handle("GET /api/admin/products", admin(http.HandlerFunc(h.Admin.Products)))
	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(h.Admin.CreateProduct)))
	mux.Handle("PUT /api/admin/products/{id}", admin(http.HandlerFunc(h.Admin.UpdateProduct)))
	mux.Handle("DELETE /api/admin/products/{id}", admin(http.HandlerFunc(h.Admin.DeleteProduct)))
	mux.Handle("POST /api/admin/hide-all", admin(http.HandlerFunc(h.Admin.HideAll)))
	mux.Handle("POST /api/admin/show-all", admin(http.HandlerFunc(h.Admin.ShowAll)))
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(h.Admin.Orders)))

	// Uploaded product images
	if opts.UploadDir != "" {
		prefix := opts.UploadURLPrefix + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadDir))))
	}

	// Apply middleware in order: Recovery -> Tracing -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = otelhttp.NewHandler(handler, "belekbox-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/api/health"
		}),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
