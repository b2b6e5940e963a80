package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"belekbox/internal/storefront"
)

// shell reads commands line by line while the catalogue refreshes in the
// background.
func (a *app) shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.Catalog.AutoRefresh > 0 {
		go a.storefront.AutoRefresh(ctx, a.cfg.Catalog.AutoRefresh)
	}

	a.printProducts(a.storefront.View())

	for {
		fmt.Fprint(a.io.out, "> ")
		line, err := a.input.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.io.out)
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		// Returning to the prompt counts as the shop becoming visible again.
		if err := a.storefront.Dispatch(ctx, storefront.Event{Kind: storefront.EventVisible}); err != nil {
			a.logger.Debug().Err(err).Msg("visibility refresh failed")
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(a.io.out, usage)
			continue
		case "retry":
			err = a.storefront.Dispatch(ctx, storefront.Event{Kind: storefront.EventRetryCatalog})
			if err == nil {
				a.printProducts(a.storefront.View())
			}
		case "dismiss":
			err = a.storefront.Dispatch(ctx, storefront.Event{Kind: storefront.EventCheckoutDismiss})
		case "admin":
			err = a.adminCommand(ctx, fields[1:])
		default:
			err = a.command(ctx, fields[0], fields[1:])
		}

		if err != nil {
			fmt.Fprintf(a.io.errOut, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
