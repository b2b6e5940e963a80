// Package storefront is the customer-facing application controller.
//
// A Controller owns the cart, the product cache and the checkout flow.
// Front ends feed it events through Dispatch; every handled event and every
// cart change produces a fresh View through the pure Render function, which
// is delivered to the OnRender subscribers.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"belekbox/internal/cart"
	"belekbox/internal/catalog"
	"belekbox/internal/checkout"
	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// Level is the severity of a user-visible message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows short messages to the customer.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(level Level, message string)

func (f NotifyFunc) Notify(level Level, message string) {
	f(level, message)
}

// Confirmer asks the customer a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool {
	return f(ctx, message)
}

// Options configures a Controller.
type Options struct {
	DefaultSeasonTitle    string
	FreeDeliveryThreshold int64
	VisibilityRefresh     time.Duration
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Cart      *cart.Manager
	Catalog   *catalog.Cache
	Checkout  *checkout.Flow
	Store     *localstore.Store
	Notifier  Notifier
	Confirmer Confirmer
}

// Controller is the storefront application state.
type Controller struct {
	mu          sync.Mutex
	products    []model.Product
	source      catalog.Source
	catalogErr  error
	sort        catalog.SortMode
	seasonTitle string
	phone       string
	phoneErr    error

	handlers  map[EventKind][]Handler
	renderers []func(View)

	cart     *cart.Manager
	catalog  *catalog.Cache
	checkout *checkout.Flow
	store    *localstore.Store
	notifier Notifier
	confirm  Confirmer
	opts     Options
	logger   zerolog.Logger
}

// New creates a controller with the default event handlers registered.
func New(deps Deps, opts Options, logger zerolog.Logger) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = NotifyFunc(func(Level, string) {})
	}
	if deps.Confirmer == nil {
		deps.Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	}
	if opts.VisibilityRefresh <= 0 {
		opts.VisibilityRefresh = 10 * time.Minute
	}

	c := &Controller{
		sort:        catalog.SortDefault,
		seasonTitle: opts.DefaultSeasonTitle,
		handlers:    make(map[EventKind][]Handler),
		cart:        deps.Cart,
		catalog:     deps.Catalog,
		checkout:    deps.Checkout,
		store:       deps.Store,
		notifier:    deps.Notifier,
		confirm:     deps.Confirmer,
		opts:        opts,
		logger:      logger.With().Str("component", "storefront").Logger(),
	}

	c.registerDefaults()
	c.cart.OnChange(func(cart.Snapshot) { c.publish() })
	return c
}

// OnRender subscribes fn to view updates.
func (c *Controller) OnRender(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderers = append(c.renderers, fn)
}

// State returns a snapshot of the application state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// View renders the current state.
func (c *Controller) View() View {
	return Render(c.State())
}

// Start restores the cart, loads the season title and the catalogue. A cart
// older than the expiry is offered for clearing. Catalogue failures are
// reported through the notifier and the view, not returned.
func (c *Controller) Start(ctx context.Context) error {
	restored, err := c.cart.Restore(ctx)
	if err != nil {
		c.notifier.Notify(LevelError, "Failed to load the cart")
		return err
	}

	if restored.Expired {
		days := int(restored.Age.Hours() / 24)
		msg := fmt.Sprintf("Your cart is more than %d days old. Clear it?", days)
		if c.confirm.Confirm(ctx, msg) {
			if err := c.cart.Clear(ctx); err != nil {
				c.notifier.Notify(LevelError, "Failed to save the cart")
			} else {
				c.notifier.Notify(LevelInfo, "Cart cleared because it expired")
			}
		}
	}

	title, err := c.store.SeasonTitle(ctx, c.opts.DefaultSeasonTitle)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load season title")
	}
	c.mu.Lock()
	c.seasonTitle = title
	c.mu.Unlock()

	c.loadCatalog(ctx, false)
	c.publish()
	return nil
}

// AutoRefresh reloads the catalogue every interval until ctx is done.
func (c *Controller) AutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logger.Debug().Msg("periodic catalogue refresh")
			if err := c.Dispatch(ctx, Event{Kind: EventRefreshCatalog}); err != nil {
				c.logger.Debug().Err(err).Msg("periodic refresh failed")
			}
		}
	}
}

func (c *Controller) stateLocked() State {
	return State{
		SeasonTitle:           c.seasonTitle,
		Products:              append([]model.Product(nil), c.products...),
		ProductsSource:        c.source,
		CatalogErr:            c.catalogErr,
		Sort:                  c.sort,
		Cart:                  c.cart.Snapshot(),
		Phone:                 c.phone,
		PhoneErr:              c.phoneErr,
		Checkout:              c.checkout.State(),
		CheckoutErr:           c.checkout.LastError(),
		Receipt:               c.checkout.Receipt(),
		FreeDeliveryThreshold: c.opts.FreeDeliveryThreshold,
		MaxQuantity:           c.cart.MaxQuantity(),
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	state := c.stateLocked()
	renderers := append([]func(View){}, c.renderers...)
	c.mu.Unlock()

	view := Render(state)
	for _, fn := range renderers {
		fn(view)
	}
}

// loadCatalog fetches products. force bypasses the in-memory copy.
func (c *Controller) loadCatalog(ctx context.Context, force bool) error {
	var (
		res catalog.Result
		err error
	)
	if force {
		res, err = c.catalog.Refresh(ctx)
	} else {
		res, err = c.catalog.Get(ctx)
	}

	c.mu.Lock()
	if err != nil {
		c.catalogErr = err
	} else {
		c.products = res.Products
		c.source = res.Source
		c.catalogErr = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.notifier.Notify(LevelError, "Could not load products. Check your connection and try again.")
		return err
	}
	if res.Source == catalog.SourcePersisted {
		c.notifier.Notify(LevelInfo, "Showing saved products")
	}
	return nil
}

func (c *Controller) setProducts(res catalog.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = res.Products
	c.source = res.Source
	c.catalogErr = nil
}

func checkoutMessage(err error) (Level, string) {
	var domainErr *model.DomainError
	msg := err.Error()
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		msg = domainErr.Message
	}

	switch {
	case errors.Is(err, model.ErrEmptyCart):
		return LevelWarning, "Add products to the cart"
	case errors.Is(err, model.ErrValidation):
		return LevelWarning, msg
	case errors.Is(err, model.ErrCheckoutInProgress):
		return LevelInfo, "Your order is already being placed"
	case errors.Is(err, model.ErrServer):
		return LevelError, "Error: " + msg
	default:
		return LevelError, "Could not reach the server"
	}
}
