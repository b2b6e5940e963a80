// Package whatsapp builds order numbers and the prefilled wa.me links the
// shop hands back after checkout.
package whatsapp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"belekbox/internal/model"

	"github.com/google/uuid"
)

// BaseURL is the click-to-chat endpoint.
const BaseURL = "https://wa.me/"

// Footer closes every order message.
const Footer = "Delivery across Kyrgyzstan. Pickup in Bishkek."

// OrderNumber returns a new order number of the form BB-YYYYMMDD-XXXXXX,
// where the suffix is six random upper-case hex digits.
func OrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BB-%s-%s", now.Format("20060102"), suffix)
}

// Order is the data rendered into a WhatsApp message.
type Order struct {
	Number  string
	Lines   []model.OrderLine
	Total   int64
	Phone   string
	Comment string
}

// Message renders the plain-text order message.
func Message(o Order) string {
	var b strings.Builder

	b.WriteString("Hello! I would like to order:\n\n")
	fmt.Fprintf(&b, "Order #%s\n\n", o.Number)
	b.WriteString("Items:\n")

	for i, line := range o.Lines {
		fmt.Fprintf(&b, "%d. %s - %d pcs × %s som = %s som\n",
			i+1,
			line.Name,
			line.Quantity,
			amount(line.Price),
			amount(line.Price*float64(line.Quantity)),
		)
	}

	fmt.Fprintf(&b, "\nTotal: %d som\n\n", o.Total)
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(o.Phone, "Not provided"))
	fmt.Fprintf(&b, "Comment: %s\n\n", orDefault(o.Comment, "No comment"))
	b.WriteString(Footer)

	return b.String()
}

// URL returns the wa.me link for number with the order message prefilled.
func URL(number string, o Order) string {
	return BaseURL + url.PathEscape(number) + "?text=" + url.QueryEscape(Message(o))
}

// amount prints whole prices without a fractional part.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
