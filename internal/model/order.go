package model

import (
	"encoding/json"
	"time"
)

// Order represents a customer order as stored by the shop.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	OrderNumber   string          `json:"order_number" db:"order_number"`
	Items         json.RawMessage `json:"items" db:"items_json"`
	ClientPhone   *string         `json:"client_phone" db:"client_phone"`
	ClientComment *string         `json:"client_comment" db:"client_comment"`
	TotalAmount   int64           `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderLine is one cart line as submitted with an order.
type OrderLine struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderRequest represents the form payload for creating an order.
type OrderRequest struct {
	Items         string
	TotalAmount   int64
	ClientPhone   string
	ClientComment string
}

// OrderResponse is returned by POST /api/orders.
type OrderResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number,omitempty"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// StatusResponse is the generic {success, error} envelope.
type StatusResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is the admin login result.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}
