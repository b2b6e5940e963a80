package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"belekbox/internal/model"
	"belekbox/internal/service"

	"github.com/rs/zerolog"
)

// maxUploadSize bounds a product form including its image.
const maxUploadSize = 10 << 20

// VisibilityResponse is returned by the hide-all and show-all endpoints.
type VisibilityResponse struct {
	Success bool  `json:"success"`
	Hidden  bool  `json:"hidden,omitempty"`
	Shown   bool  `json:"shown,omitempty"`
	Count   int64 `json:"count"`
}

// AdminHandler handles admin panel requests.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /api/admin/login requests.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	token, err := h.service.Login(r.Context(), req.Password)
	if err != nil {
		writeJSON(w, http.StatusOK, model.LoginResponse{Success: false, Error: "invalid password"})
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{Success: true, Token: token})
}

// Products handles GET /api/admin/products requests.
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// CreateProduct handles POST /api/admin/products multipart requests.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, image, err := h.readProductForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	id, err := h.service.CreateProduct(r.Context(), input, image)
	if err != nil {
		writeDomainError(w, err, "failed to create product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, ProductID: id})
}

// UpdateProduct handles PUT /api/admin/products/{id} multipart requests.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	input, image, err := h.readProductForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.UpdateProduct(r.Context(), id, input, image); err != nil {
		writeDomainError(w, err, "failed to update product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true})
}

// DeleteProduct handles DELETE /api/admin/products/{id} requests.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to delete product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true})
}

// HideAll handles POST /api/admin/hide-all requests.
func (h *AdminHandler) HideAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.HideAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hide products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, VisibilityResponse{Success: true, Hidden: true, Count: n})
}

// ShowAll handles POST /api/admin/show-all requests.
func (h *AdminHandler) ShowAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ShowAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to show products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, VisibilityResponse{Success: true, Shown: true, Count: n})
}

// Orders handles GET /api/admin/orders requests.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product ID", h.logger)
		return 0, false
	}
	return id, true
}

// readProductForm decodes the multipart product form. Absent fields stay
// nil; the image is optional.
func (h *AdminHandler) readProductForm(w http.ResponseWriter, r *http.Request) (model.ProductInput, *model.Image, error) {
	var input model.ProductInput

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := parseForm(r); err != nil {
		return input, nil, fmt.Errorf("invalid form data")
	}

	if v, ok := formValue(r, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(r, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(r, "price"); ok {
		price, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return input, nil, fmt.Errorf("invalid price")
		}
		input.Price = &price
	}
	if v, ok := formValue(r, "sort_order"); ok {
		order, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return input, nil, fmt.Errorf("invalid sort order")
		}
		input.SortOrder = &order
	}
	if v, ok := formValue(r, "is_available"); ok {
		available, err := parseBool(v)
		if err != nil {
			return input, nil, fmt.Errorf("invalid is_available")
		}
		input.IsAvailable = &available
	}

	image, err := readImage(r)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read uploaded image")
		return input, nil, fmt.Errorf("invalid image")
	}

	return input, image, nil
}

// formValue reports whether key was sent at all, so that an empty
// description can be told apart from an absent one.
func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func readImage(r *http.Request) (*model.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &model.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseBool accepts the spellings HTML forms and checkboxes send.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "on", "yes", "y":
		return true, nil
	case "0", "false", "f", "off", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
