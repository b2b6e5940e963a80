package repository

import (
	"context"

	"belekbox/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// ListAvailable returns products visible in the shop, ordered by
	// sort_order then id.
	ListAvailable(ctx context.Context) ([]model.Product, error)

	// ListAll returns every product in the same order as ListAvailable.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product. It returns nil, nil when the
	// product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create inserts product and fills in its ID and CreatedAt.
	Create(ctx context.Context, product *model.Product) error

	// Update writes every editable field of product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Returns model.ErrProductNotFound when it
	// does not exist.
	Delete(ctx context.Context, id int64) error

	// SetAllAvailability sets is_available on every product and returns the
	// number of rows changed.
	SetAllAvailability(ctx context.Context, available bool) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts order and fills in its ID and CreatedAt.
	Create(ctx context.Context, order *model.Order) error

	// List returns all orders, newest first.
	List(ctx context.Context) ([]model.Order, error)
}
