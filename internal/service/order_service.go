package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"belekbox/internal/model"
	"belekbox/internal/repository"
	"belekbox/internal/whatsapp"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo      repository.OrderRepository
	whatsappNumber string
	now            func() time.Time
	logger         zerolog.Logger
}

// NewOrderService creates a new order service. whatsappNumber is the shop
// number orders are sent to.
func NewOrderService(orderRepo repository.OrderRepository, whatsappNumber string, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		whatsappNumber: whatsappNumber,
		now:            time.Now,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder validates the submitted cart, stores the order and builds the
// WhatsApp link.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	lines, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNumber:   whatsapp.OrderNumber(s.now()),
		Items:         json.RawMessage(req.Items),
		ClientPhone:   optional(req.ClientPhone),
		ClientComment: optional(req.ClientComment),
		TotalAmount:   req.TotalAmount,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	link := whatsapp.URL(s.whatsappNumber, whatsapp.Order{
		Number:  order.OrderNumber,
		Lines:   lines,
		Total:   order.TotalAmount,
		Phone:   req.ClientPhone,
		Comment: req.ClientComment,
	})

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int64("order_id", order.ID).
		Int("item_count", len(lines)).
		Int64("total_amount", order.TotalAmount).
		Msg("order created successfully")

	return &model.OrderResponse{
		Success:     true,
		OrderNumber: order.OrderNumber,
		WhatsAppURL: link,
	}, nil
}

// validateOrderRequest decodes the submitted items, which must be a JSON
// array of cart lines.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) ([]model.OrderLine, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}

	var lines []model.OrderLine
	if err := json.Unmarshal([]byte(req.Items), &lines); err != nil {
		s.logger.Warn().Err(err).Msg("invalid items format")
		return nil, model.ErrInvalidItems
	}

	if len(lines) == 0 {
		s.logger.Debug().Msg("order rejected: cart is empty")
		return nil, model.ErrEmptyCart
	}

	if req.TotalAmount < 0 {
		s.logger.Warn().Int64("total_amount", req.TotalAmount).Msg("invalid total amount")
		return nil, model.NewDomainError(model.ErrCodeInvalidForm, "invalid total amount")
	}

	return lines, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
