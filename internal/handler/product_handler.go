package handler

import (
	"net/http"

	"belekbox/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles public product requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list products")
		writeError(w, http.StatusInternalServerError, "failed to load products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
