package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"belekbox/internal/admin"
	"belekbox/internal/apiclient"
	"belekbox/internal/cart"
	"belekbox/internal/catalog"
	"belekbox/internal/checkout"
	"belekbox/internal/config"
	"belekbox/internal/localstore"
	"belekbox/internal/storefront"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// appIO holds the terminal streams.
type appIO struct {
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
	assumeYes bool
}

// app wires the storefront components for one invocation.
type app struct {
	cfg    *config.ShopConfig
	io     appIO
	input  *bufio.Reader
	logger zerolog.Logger

	redis      *redis.Client
	store      *localstore.Store
	client     *apiclient.Client
	cart       *cart.Manager
	catalog    *catalog.Cache
	storefront *storefront.Controller
	admin      *admin.Panel
}

func newApp(ctx context.Context, configPath string, streams appIO) (*app, error) {
	cfg, err := config.LoadShop(configPath)
	if err != nil {
		return nil, err
	}

	logger := config.NewLoggerTo(streams.errOut, cfg.Logger)
	a := &app{
		cfg:    cfg,
		io:     streams,
		input:  bufio.NewReader(streams.in),
		logger: logger,
	}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.store = localstore.New(backend)

	a.client = apiclient.New(cfg.BaseURL, logger)
	a.cart = cart.NewManager(a.store, cart.Options{
		MaxQuantity: cfg.Cart.MaxQuantity,
		Expiry:      cfg.Cart.Expiry,
	}, logger)
	a.catalog = catalog.New(a.client, a.store, catalog.Options{
		TTL:    cfg.Catalog.CacheTTL,
		MaxAge: cfg.Catalog.MaxAge,
	}, logger)

	a.storefront = storefront.New(storefront.Deps{
		Cart:      a.cart,
		Catalog:   a.catalog,
		Checkout:  checkout.New(a.cart, a.client, logger),
		Store:     a.store,
		Notifier:  storefront.NotifyFunc(a.notify),
		Confirmer: storefront.ConfirmFunc(a.confirm),
	}, storefront.Options{
		DefaultSeasonTitle:    cfg.SeasonTitle,
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		VisibilityRefresh:     cfg.Catalog.VisibilityRefresh,
	}, logger)

	a.admin = admin.New(a.client, a.store, admin.ConfirmFunc(a.confirm), logger)
	a.admin.OnLogout(func() {
		a.notify(storefront.LevelWarning, "Admin session expired, please log in again")
	})

	return a, nil
}

// openBackend selects the key-value store named in the config.
func (a *app) openBackend(ctx context.Context) (localstore.Backend, error) {
	switch a.cfg.Store.Driver {
	case "memory":
		return localstore.NewMemoryBackend(), nil
	case "redis":
		client, err := localstore.DialRedis(ctx, a.cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return localstore.NewRedisBackend(client, a.cfg.Store.Prefix), nil
	default:
		return localstore.NewFileBackend(a.cfg.Store.Path, a.logger)
	}
}

// Close releases the store connection.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

func (a *app) notify(level storefront.Level, message string) {
	fmt.Fprintf(a.io.errOut, "[%s] %s\n", level, message)
}

// confirm asks a yes/no question on the terminal. Anything but an explicit
// yes counts as no.
func (a *app) confirm(_ context.Context, message string) bool {
	if a.io.assumeYes {
		return true
	}
	fmt.Fprintf(a.io.out, "%s [y/N] ", message)
	answer, err := a.input.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
