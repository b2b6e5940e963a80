package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"belekbox/internal/model"
	"belekbox/internal/storefront"
)

// execute runs one command line.
func (a *app) execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := args[0], args[1:]

	if cmd == "admin" {
		return a.adminCommand(ctx, rest)
	}

	if err := a.storefront.Start(ctx); err != nil {
		return err
	}

	if cmd == "shell" {
		return a.shell(ctx)
	}
	return a.command(ctx, cmd, rest)
}

// command runs a customer command against a started storefront.
func (a *app) command(ctx context.Context, cmd string, rest []string) error {
	switch cmd {
	case "products":
		return a.products(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "remove":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		return a.dispatchAndShowCart(ctx, storefront.Event{Kind: storefront.EventRemoveFromCart, ProductID: id})
	case "qty":
		return a.quantity(ctx, rest)
	case "cart":
		a.printCart(a.storefront.View())
		return nil
	case "clear":
		return a.dispatchAndShowCart(ctx, storefront.Event{Kind: storefront.EventClearCart})
	case "phone":
		return a.phone(ctx, rest)
	case "checkout":
		return a.checkout(ctx, rest)
	case "season":
		return a.season(ctx, rest)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(a.io.errOut)
	sortMode := fs.String("sort", "default", "sort order: default, price_asc, price_desc or new")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.storefront.Dispatch(ctx, storefront.Event{Kind: storefront.EventSort, Text: *sortMode}); err != nil {
		return err
	}

	a.printProducts(a.storefront.View())
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}

	product, ok := a.findProduct(id)
	if !ok {
		return model.NewDomainError(model.ErrCodeNotFound, fmt.Sprintf("product %d not found", id))
	}

	return a.dispatchAndShowCart(ctx, storefront.Event{Kind: storefront.EventAddToCart, Product: product})
}

func (a *app) quantity(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return model.NewValidationError("quantity is required")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return model.NewValidationError(fmt.Sprintf("invalid quantity %q", args[1]))
	}

	return a.dispatchAndShowCart(ctx, storefront.Event{Kind: storefront.EventSetQuantity, ProductID: id, Quantity: n})
}

func (a *app) phone(ctx context.Context, args []string) error {
	if err := a.storefront.Dispatch(ctx, storefront.Event{
		Kind: storefront.EventPhoneInput,
		Text: strings.Join(args, " "),
	}); err != nil {
		return err
	}

	v := a.storefront.View()
	fmt.Fprintln(a.io.out, v.Phone)
	if v.PhoneError != "" {
		return model.NewValidationError(v.PhoneError)
	}
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.io.errOut)
	contact := fs.String("phone", "", "contact phone number")
	comment := fs.String("comment", "", "comment for the shop")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.storefront.Dispatch(ctx, storefront.Event{
		Kind:    storefront.EventCheckout,
		Text:    *contact,
		Comment: *comment,
	})
	if err != nil {
		return err
	}

	v := a.storefront.View()
	fmt.Fprintf(a.io.out, "Order number: %s\n", v.OrderNumber)
	fmt.Fprintf(a.io.out, "Send it via WhatsApp: %s\n", v.WhatsAppURL)
	return nil
}

func (a *app) season(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := a.storefront.Dispatch(ctx, storefront.Event{
			Kind: storefront.EventSetSeasonTitle,
			Text: strings.Join(args, " "),
		}); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.io.out, a.storefront.View().SeasonTitle)
	return nil
}

func (a *app) dispatchAndShowCart(ctx context.Context, ev storefront.Event) error {
	if err := a.storefront.Dispatch(ctx, ev); err != nil {
		return err
	}
	a.printCart(a.storefront.View())
	return nil
}

func (a *app) findProduct(id int64) (model.Product, bool) {
	for _, p := range a.storefront.State().Products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func argID(args []string, i int) (int64, error) {
	if len(args) <= i {
		return 0, model.NewValidationError("product id is required")
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError(fmt.Sprintf("invalid product id %q", args[i]))
	}
	return id, nil
}
