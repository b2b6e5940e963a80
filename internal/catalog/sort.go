package catalog

import (
	"cmp"
	"fmt"
	"slices"

	"belekbox/internal/model"
)

// SortMode selects the catalogue display order.
type SortMode string

const (
	SortDefault   SortMode = "default"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNew       SortMode = "new"
)

// ParseSortMode validates s. An empty string selects the default order.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case "":
		return SortDefault, nil
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNew:
		return m, nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("unknown sort mode %q", s))
	}
}

// Sort returns a sorted copy of products. The default mode keeps the
// server order; ties keep their relative order in every mode.
func Sort(products []model.Product, mode SortMode) []model.Product {
	out := slices.Clone(products)

	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b model.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b model.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case SortNew:
		slices.SortStableFunc(out, func(a, b model.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}
