package main

import (
	"fmt"
	"text/tabwriter"

	"belekbox/internal/storefront"
)

func (a *app) printProducts(v storefront.View) {
	fmt.Fprintf(a.io.out, "%s\n\n", v.SeasonTitle)

	switch {
	case v.CatalogError != "" && len(v.Products) == 0:
		fmt.Fprintln(a.io.out, v.CatalogError)
		if v.CanRetry {
			fmt.Fprintln(a.io.out, "Type \"retry\" to try again.")
		}
		return
	case v.CatalogEmpty:
		fmt.Fprintln(a.io.out, "No products available yet.")
		return
	}

	tw := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range v.Products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price, p.Description)
	}
	tw.Flush()

	if v.CatalogError != "" {
		fmt.Fprintf(a.io.out, "\n%s\n", v.CatalogError)
	}
}

func (a *app) printCart(v storefront.View) {
	if v.CartEmpty {
		fmt.Fprintln(a.io.out, "Your cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, row := range v.CartRows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", row.ID, row.Name, row.UnitPrice, row.Quantity, row.Subtotal)
	}
	tw.Flush()

	fmt.Fprintf(a.io.out, "\nItems: %d  Total: %s\n", v.CartCount, v.Total)
	fmt.Fprintf(a.io.out, "%s\n", v.Delivery.Label)
	if v.Phone != "" {
		fmt.Fprintf(a.io.out, "Phone: %s\n", v.Phone)
	}
}
