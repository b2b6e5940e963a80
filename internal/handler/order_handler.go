package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"belekbox/internal/model"
	"belekbox/internal/service"

	"github.com/rs/zerolog"
)

// maxFormMemory bounds the in-memory part of a multipart order form.
const maxFormMemory = 1 << 20

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests. The body is a urlencoded or
// multipart form with the fields items, total_amount, client_phone and
// client_comment. Rejected orders are answered with 200 and success=false.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	total, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("total_amount")), 10, 64)
	if err != nil {
		writeFailure(w, "invalid total amount", h.logger)
		return
	}

	req := &model.OrderRequest{
		Items:         r.FormValue("items"),
		TotalAmount:   total,
		ClientPhone:   r.FormValue("client_phone"),
		ClientComment: r.FormValue("client_comment"),
	}

	resp, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			writeFailure(w, domainErr.Message, h.logger)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create order")
		writeError(w, http.StatusInternalServerError, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseForm accepts both urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}
