package model

import "time"

// Product represents a gift box in the catalogue.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       int64     `json:"price" db:"price"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductInput carries the editable fields of a product.
// Nil fields are left untouched on update.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *int64
	IsAvailable *bool
	SortOrder   *int
}

// Image is an uploaded product image.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}
