package storefront

import (
	"math"
	"strconv"
	"strings"

	"belekbox/internal/cart"
	"belekbox/internal/catalog"
	"belekbox/internal/checkout"
	"belekbox/internal/model"
)

// Currency is appended to every displayed amount.
const Currency = "som"

// PlaceholderImage is shown for products without an image.
const PlaceholderImage = "https://via.placeholder.com/400x400/059669/FFFFFF?text=BelekBox"

// State is everything the storefront view is rendered from.
type State struct {
	SeasonTitle           string
	Products              []model.Product
	ProductsSource        catalog.Source
	CatalogErr            error
	Sort                  catalog.SortMode
	Cart                  cart.Snapshot
	Phone                 string
	PhoneErr              error
	Checkout              checkout.State
	CheckoutErr           error
	Receipt               *checkout.Receipt
	FreeDeliveryThreshold int64
	MaxQuantity           int
}

// View is a render-ready description of the storefront.
type View struct {
	SeasonTitle string

	Products     []ProductCard
	CatalogEmpty bool
	CatalogError string
	CanRetry     bool

	CartRows  []CartRow
	CartEmpty bool
	CartCount int
	Total     string
	Delivery  DeliveryProgress

	Phone      string
	PhoneError string

	CheckoutEnabled bool
	CheckoutLabel   string
	CheckoutError   string
	OrderNumber     string
	WhatsAppURL     string
}

// ProductCard is one catalogue entry.
type ProductCard struct {
	ID          int64
	Name        string
	Description string
	Price       string
	ImageURL    string
	Product     model.Product
}

// CartRow is one cart line.
type CartRow struct {
	ID        int64
	Name      string
	UnitPrice string
	Quantity  int
	Subtotal  string
	// CanDecrease and CanIncrease drive the quantity buttons.
	CanDecrease bool
	CanIncrease bool
}

// DeliveryProgress shows how close the cart is to free delivery.
type DeliveryProgress struct {
	Percent float64
	Free    bool
	Label   string
}

// Render maps state to a view. It has no side effects.
func Render(s State) View {
	v := View{
		SeasonTitle: s.SeasonTitle,
		Phone:       s.Phone,
		CartCount:   s.Cart.Count,
		CartEmpty:   len(s.Cart.Items) == 0,
		Total:       FormatAmount(s.Cart.Total) + " " + Currency,
	}

	for _, p := range catalog.Sort(s.Products, s.Sort) {
		image := PlaceholderImage
		if p.ImageURL != nil && *p.ImageURL != "" {
			image = *p.ImageURL
		}
		v.Products = append(v.Products, ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       FormatAmount(float64(p.Price)) + " " + Currency,
			ImageURL:    image,
			Product:     p,
		})
	}
	switch {
	case len(v.Products) == 0 && s.CatalogErr != nil:
		v.CatalogError = s.CatalogErr.Error()
		v.CanRetry = true
	case len(v.Products) == 0:
		v.CatalogEmpty = true
	}

	maxQuantity := s.MaxQuantity
	if maxQuantity < 1 {
		maxQuantity = cart.DefaultMaxQuantity
	}
	for _, item := range s.Cart.Items {
		v.CartRows = append(v.CartRows, CartRow{
			ID:          item.ID,
			Name:        item.Name,
			UnitPrice:   FormatAmount(item.Price) + " " + Currency,
			Quantity:    item.Quantity,
			Subtotal:    FormatAmount(item.Subtotal()) + " " + Currency,
			CanDecrease: item.Quantity > 0,
			CanIncrease: item.Quantity < maxQuantity,
		})
	}

	v.Delivery = deliveryProgress(s.Cart.Total, s.FreeDeliveryThreshold)

	if s.PhoneErr != nil && s.Phone != "" {
		v.PhoneError = s.PhoneErr.Error()
	}

	v.CheckoutEnabled = !v.CartEmpty && s.Checkout != checkout.Submitting
	v.CheckoutLabel = "Order via WhatsApp"
	if s.Checkout == checkout.Submitting {
		v.CheckoutLabel = "Processing..."
	}
	if s.CheckoutErr != nil {
		v.CheckoutError = s.CheckoutErr.Error()
	}
	if s.Checkout == checkout.Success && s.Receipt != nil {
		v.OrderNumber = s.Receipt.OrderNumber
		v.WhatsAppURL = s.Receipt.WhatsAppURL
	}

	return v
}

func deliveryProgress(total float64, threshold int64) DeliveryProgress {
	if threshold <= 0 {
		return DeliveryProgress{Percent: 100, Free: true, Label: "Free delivery!"}
	}
	if total >= float64(threshold) {
		return DeliveryProgress{Percent: 100, Free: true, Label: "Free delivery!"}
	}
	percent := math.Max(0, total/float64(threshold)*100)
	return DeliveryProgress{
		Percent: percent,
		Label:   FormatAmount(total) + "/" + FormatAmount(float64(threshold)) + " " + Currency,
	}
}

// FormatAmount renders v with a space between thousands groups, e.g.
// 1500 as "1 500". Fractions are kept as they are.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
