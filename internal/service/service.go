package service

import (
	"context"

	"belekbox/internal/model"
)

// ProductService defines the public catalogue operations.
type ProductService interface {
	// ListAvailable returns the products visible in the shop.
	ListAvailable(ctx context.Context) ([]model.Product, error)
}

// OrderService defines operations for order placement.
type OrderService interface {
	// CreateOrder stores a new order and returns its number together with
	// the WhatsApp link that carries the order to the shop.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)
}

// AdminService defines the operations behind the admin panel.
type AdminService interface {
	// Login checks password and returns the bearer token for the session.
	Login(ctx context.Context, password string) (string, error)

	// Authorize reports whether token grants admin access.
	Authorize(token string) bool

	// ListProducts returns every product, hidden ones included.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// CreateProduct stores a new product with an optional image and returns
	// its id.
	CreateProduct(ctx context.Context, input model.ProductInput, image *model.Image) (int64, error)

	// UpdateProduct applies the non-nil fields of input. A new image
	// replaces and removes the previous one.
	UpdateProduct(ctx context.Context, id int64, input model.ProductInput, image *model.Image) error

	// DeleteProduct removes a product and its image.
	DeleteProduct(ctx context.Context, id int64) error

	// HideAll marks every product unavailable.
	HideAll(ctx context.Context) (int64, error)

	// ShowAll marks every product available.
	ShowAll(ctx context.Context) (int64, error)

	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]model.Order, error)
}
