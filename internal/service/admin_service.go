package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"belekbox/internal/imagestore"
	"belekbox/internal/model"
	"belekbox/internal/repository"

	"github.com/rs/zerolog"
)

// adminService implements AdminService.
type adminService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	images      imagestore.Store
	password    string
	logger      zerolog.Logger
}

// NewAdminService creates a new admin service. The session token handed
// out on login is the admin password itself.
func NewAdminService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	images imagestore.Store,
	password string,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		images:      images,
		password:    password,
		logger:      logger.With().Str("service", "admin").Logger(),
	}
}

// Login checks password and returns the session token.
func (s *adminService) Login(ctx context.Context, password string) (string, error) {
	if !s.Authorize(password) {
		s.logger.Warn().Msg("admin login failed")
		return "", model.ErrInvalidPassword
	}

	s.logger.Info().Msg("admin logged in")
	return s.password, nil
}

// Authorize reports whether token matches the admin password.
func (s *adminService) Authorize(token string) bool {
	if token == "" || s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.password)) == 1
}

// ListProducts returns every product.
func (s *adminService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// CreateProduct stores a new product. Name and price are required,
// availability defaults to true.
func (s *adminService) CreateProduct(ctx context.Context, input model.ProductInput, image *model.Image) (int64, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return 0, model.NewValidationError("name is required")
	}
	if input.Price == nil {
		return 0, model.NewValidationError("price is required")
	}

	product := &model.Product{IsAvailable: true}
	if err := applyInput(product, input); err != nil {
		return 0, err
	}

	if image != nil {
		url, err := s.images.Save(ctx, *image)
		if err != nil {
			s.logger.Error().Err(err).Str("filename", image.Filename).Msg("failed to save product image")
			return 0, fmt.Errorf("failed to save image: %w", err)
		}
		product.ImageURL = &url
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.discardImage(ctx, product.ImageURL)
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Bool("has_image", product.ImageURL != nil).
		Msg("product created")

	return product.ID, nil
}

// UpdateProduct applies the non-nil fields of input to product id.
func (s *adminService) UpdateProduct(ctx context.Context, id int64, input model.ProductInput, image *model.Image) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return model.ErrProductNotFound
	}

	if err := applyInput(product, input); err != nil {
		return err
	}

	oldImage := product.ImageURL
	if image != nil {
		url, err := s.images.Save(ctx, *image)
		if err != nil {
			s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to save product image")
			return fmt.Errorf("failed to save image: %w", err)
		}
		product.ImageURL = &url
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if image != nil {
			s.discardImage(ctx, product.ImageURL)
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if image != nil {
		s.discardImage(ctx, oldImage)
	}

	s.logger.Info().Int64("product_id", id).Bool("image_replaced", image != nil).Msg("product updated")
	return nil
}

// DeleteProduct removes product id and its image.
func (s *adminService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return model.ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.discardImage(ctx, product.ImageURL)

	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

// HideAll marks every product unavailable.
func (s *adminService) HideAll(ctx context.Context) (int64, error) {
	return s.setAllAvailability(ctx, false)
}

// ShowAll marks every product available.
func (s *adminService) ShowAll(ctx context.Context) (int64, error) {
	return s.setAllAvailability(ctx, true)
}

func (s *adminService) setAllAvailability(ctx context.Context, available bool) (int64, error) {
	n, err := s.productRepo.SetAllAvailability(ctx, available)
	if err != nil {
		s.logger.Error().Err(err).Bool("available", available).Msg("failed to change product visibility")
		return 0, fmt.Errorf("failed to update products: %w", err)
	}

	s.logger.Info().Bool("available", available).Int64("count", n).Msg("product visibility changed")
	return n, nil
}

// ListOrders returns all orders, newest first.
func (s *adminService) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// discardImage removes an image that is no longer referenced. Failures are
// logged only.
func (s *adminService) discardImage(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.images.Delete(ctx, *url); err != nil {
		s.logger.Warn().Err(err).Str("image_url", *url).Msg("failed to remove image")
	}
}

// applyInput copies the non-nil fields of input onto product.
func applyInput(product *model.Product, input model.ProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return model.NewValidationError("name must not be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return model.NewValidationError("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}
	return nil
}
