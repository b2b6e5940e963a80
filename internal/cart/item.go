package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// LineItem is one product entry in the cart.
type LineItem struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Subtotal returns price times quantity, or 0 when either is not a finite
// number.
func (li LineItem) Subtotal() float64 {
	v := li.Price * float64(li.Quantity)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// UnmarshalJSON decodes a persisted line leniently. Persisted carts may have
// been written by older storefront versions or edited by hand, so numeric
// fields that are strings are parsed and anything else decodes to zero.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Name     json.RawMessage `json:"name"`
		Price    json.RawMessage `json:"price"`
		Quantity json.RawMessage `json:"quantity"`
		AddedAt  json.RawMessage `json:"addedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*li = LineItem{
		ID:       int64(lenientNumber(raw.ID)),
		Price:    lenientNumber(raw.Price),
		Quantity: int(lenientNumber(raw.Quantity)),
	}

	var name string
	if json.Unmarshal(raw.Name, &name) == nil {
		li.Name = name
	}

	var added string
	if json.Unmarshal(raw.AddedAt, &added) == nil {
		if t, err := time.Parse(time.RFC3339Nano, added); err == nil {
			li.AddedAt = t
		}
	}

	return nil
}

func lenientNumber(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}

	return 0
}
