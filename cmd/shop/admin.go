package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"belekbox/internal/admin"
	"belekbox/internal/apiclient"
	"belekbox/internal/model"
	"belekbox/internal/storefront"
)

func (a *app) adminCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return model.NewValidationError("admin command is required")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) == 0 {
			return model.NewValidationError("password is required")
		}
		if err := a.admin.Login(ctx, rest[0]); err != nil {
			return err
		}
		a.notify(storefront.LevelSuccess, "Logged in")
		return nil
	case "logout":
		return a.admin.Logout(ctx)
	}

	if _, err := a.admin.Restore(ctx); err != nil {
		return err
	}
	if !a.admin.LoggedIn() {
		return model.NewDomainError(model.ErrCodeAuth, "not logged in, run \"admin login <password>\" first")
	}

	switch cmd {
	case "products":
		return a.adminProducts(ctx)
	case "orders":
		return a.adminOrders(ctx)
	case "save":
		return a.adminSave(ctx, rest)
	case "delete":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		return a.reportConfirmed(a.admin.Delete(ctx, id))("Product deleted")
	case "hide-all":
		return a.reportConfirmed(a.admin.HideAll(ctx))("All products hidden")
	case "show-all":
		return a.reportConfirmed(a.admin.ShowAll(ctx))("All products shown")
	}
	return fmt.Errorf("unknown admin command %q", cmd)
}

// reportConfirmed prints done when the operator confirmed and the call
// succeeded.
func (a *app) reportConfirmed(confirmed bool, err error) func(done string) error {
	return func(done string) error {
		if err != nil {
			return err
		}
		if !confirmed {
			a.notify(storefront.LevelInfo, "Cancelled")
			return nil
		}
		a.notify(storefront.LevelSuccess, done)
		return nil
	}
}

func (a *app) adminProducts(ctx context.Context) error {
	products, err := a.admin.Products(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSORT\tVISIBLE\tIMAGE")
	for _, p := range products {
		image := "-"
		if p.ImageURL != nil {
			image = *p.ImageURL
		}
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%d\t%t\t%s\n",
			p.ID, p.Name, storefront.FormatAmount(float64(p.Price)), storefront.Currency, p.SortOrder, p.IsAvailable, image)
	}
	return tw.Flush()
}

func (a *app) adminOrders(ctx context.Context) error {
	orders, err := a.admin.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.io.out, "No orders yet.")
		return nil
	}

	for _, o := range orders {
		fmt.Fprintf(a.io.out, "%s  %s  %s %s\n",
			o.OrderNumber, o.CreatedAt.Format("2006-01-02 15:04"), storefront.FormatAmount(float64(o.TotalAmount)), storefront.Currency)
		if o.ClientPhone != nil {
			fmt.Fprintf(a.io.out, "  phone: %s\n", *o.ClientPhone)
		}
		if o.ClientComment != nil {
			fmt.Fprintf(a.io.out, "  comment: %s\n", *o.ClientComment)
		}

		lines, err := admin.OrderLines(o)
		if err != nil {
			fmt.Fprintln(a.io.out, "  (unreadable items)")
			continue
		}
		for _, l := range lines {
			fmt.Fprintf(a.io.out, "  - %s × %d\n", l.Name, l.Quantity)
		}
	}
	return nil
}

func (a *app) adminSave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin save", flag.ContinueOnError)
	fs.SetOutput(a.io.errOut)
	id := fs.Int64("id", 0, "product to update; 0 creates a new product")
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	price := fs.Int64("price", -1, "price in som")
	sortOrder := fs.Int("sort", 0, "sort order")
	available := fs.Bool("available", true, "show the product in the shop")
	imagePath := fs.String("image", "", "path to an image file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := apiclient.ProductForm{
		Name:        *name,
		Description: *description,
		Price:       *price,
		SortOrder:   *sortOrder,
		IsAvailable: *available,
	}

	// Updating without a flag keeps the stored value.
	if *id != 0 {
		current, err := a.admin.Edit(ctx, *id)
		if err != nil {
			return err
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["name"] {
			form.Name = current.Name
		}
		if !set["description"] {
			form.Description = current.Description
		}
		if !set["price"] {
			form.Price = current.Price
		}
		if !set["sort"] {
			form.SortOrder = current.SortOrder
		}
		if !set["available"] {
			form.IsAvailable = current.IsAvailable
		}
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", *imagePath, err)
		}
		form.Image = &model.Image{
			Filename:    filepath.Base(*imagePath),
			ContentType: mime.TypeByExtension(filepath.Ext(*imagePath)),
			Data:        data,
		}
	}

	saved, err := a.admin.Save(ctx, *id, form)
	if err != nil {
		return err
	}
	a.notify(storefront.LevelSuccess, fmt.Sprintf("Product %d saved", saved))
	return nil
}
