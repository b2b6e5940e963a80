// Command shop is a terminal front end for the BelekBox storefront and its
// admin panel. State (cart, product cache, admin session) lives in the
// configured key-value store between invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: shop [flags] <command> [args]

Customer commands:
  products [-sort default|price_asc|price_desc|new]
  add <product-id>
  remove <product-id>
  qty <product-id> <quantity>
  cart
  clear
  phone <number>
  checkout [-phone number] [-comment text]
  season [title]
  shell

Admin commands:
  admin login <password>
  admin logout
  admin products
  admin orders
  admin save [-id n] -name s -price n [-description s] [-sort n] [-available=true] [-image path]
  admin delete <product-id>
  admin hide-all
  admin show-all

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("shop", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", getenv("SHOP_CONFIG", "shop.yaml"), "path to the YAML config file")
	assumeYes := fs.Bool("yes", false, "answer yes to every confirmation")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *configPath, appIO{
		in:        stdin,
		out:       stdout,
		errOut:    stderr,
		assumeYes: *assumeYes,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return a.execute(ctx, fs.Args())
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
