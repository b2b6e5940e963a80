package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"belekbox/internal/catalog"
	"belekbox/internal/checkout"
	"belekbox/internal/model"
	"belekbox/internal/phone"
)

// EventKind names a user or timer event.
type EventKind string

const (
	EventAddToCart       EventKind = "add_to_cart"
	EventRemoveFromCart  EventKind = "remove_from_cart"
	EventSetQuantity     EventKind = "set_quantity"
	EventClearCart       EventKind = "clear_cart"
	EventCheckout        EventKind = "checkout"
	EventRefreshCatalog  EventKind = "refresh_catalog"
	EventRetryCatalog    EventKind = "retry_catalog"
	EventVisible         EventKind = "visible"
	EventSort            EventKind = "sort"
	EventPhoneInput      EventKind = "phone_input"
	EventSetSeasonTitle  EventKind = "set_season_title"
	EventCheckoutDismiss EventKind = "checkout_dismiss"
)

// Event is a single input to the controller. Only the fields relevant to
// Kind are read.
type Event struct {
	Kind      EventKind
	Product   model.Product
	ProductID int64
	Quantity  int
	Text      string
	Comment   string
}

// Handler reacts to an event.
type Handler func(ctx context.Context, ev Event) error

// On registers h for kind. Handlers run in registration order after the
// built-in ones.
func (c *Controller) On(kind EventKind, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], h)
}

// Dispatch runs the handlers for ev and publishes a new view. It stops at
// the first handler error and returns it.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[ev.Kind]...)
	c.mu.Unlock()

	if len(handlers) == 0 {
		return model.NewValidationError(fmt.Sprintf("no handler for event %q", ev.Kind))
	}

	var err error
	for _, h := range handlers {
		if err = h(ctx, ev); err != nil {
			break
		}
	}

	c.publish()
	return err
}

func (c *Controller) registerDefaults() {
	c.handlers[EventAddToCart] = []Handler{c.handleAdd}
	c.handlers[EventRemoveFromCart] = []Handler{c.handleRemove}
	c.handlers[EventSetQuantity] = []Handler{c.handleSetQuantity}
	c.handlers[EventClearCart] = []Handler{c.handleClear}
	c.handlers[EventCheckout] = []Handler{c.handleCheckout}
	c.handlers[EventCheckoutDismiss] = []Handler{c.handleCheckoutDismiss}
	c.handlers[EventRefreshCatalog] = []Handler{c.handleRefresh}
	c.handlers[EventRetryCatalog] = []Handler{c.handleRetry}
	c.handlers[EventVisible] = []Handler{c.handleVisible}
	c.handlers[EventSort] = []Handler{c.handleSort}
	c.handlers[EventPhoneInput] = []Handler{c.handlePhoneInput}
	c.handlers[EventSetSeasonTitle] = []Handler{c.handleSeasonTitle}
}

func (c *Controller) handleAdd(ctx context.Context, ev Event) error {
	if err := c.cart.Add(ctx, ev.Product); err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.notifier.Notify(LevelError, "Failed to add the product")
		} else {
			c.notifier.Notify(LevelError, "Failed to save the cart")
		}
		return err
	}
	c.notifier.Notify(LevelSuccess, "Added to cart!")
	return nil
}

func (c *Controller) handleRemove(ctx context.Context, ev Event) error {
	before := c.cart.Len()
	if err := c.cart.Remove(ctx, ev.ProductID); err != nil {
		c.notifier.Notify(LevelError, "Failed to save the cart")
		return err
	}
	if c.cart.Len() < before {
		c.notifier.Notify(LevelInfo, "Removed from cart")
	}
	return nil
}

func (c *Controller) handleSetQuantity(ctx context.Context, ev Event) error {
	before := c.cart.Len()
	clamped, err := c.cart.SetQuantity(ctx, ev.ProductID, ev.Quantity)
	if clamped {
		c.notifier.Notify(LevelWarning, fmt.Sprintf("Maximum quantity: %d", c.cart.MaxQuantity()))
	}
	if err != nil {
		c.notifier.Notify(LevelError, "Failed to save the cart")
		return err
	}
	if ev.Quantity < 1 && c.cart.Len() < before {
		c.notifier.Notify(LevelInfo, "Removed from cart")
	}
	return nil
}

func (c *Controller) handleClear(ctx context.Context, _ Event) error {
	if c.cart.Len() == 0 {
		return nil
	}
	if !c.confirm.Confirm(ctx, "Clear the whole cart?") {
		return nil
	}
	if err := c.cart.Clear(ctx); err != nil {
		c.notifier.Notify(LevelError, "Failed to save the cart")
		return err
	}
	c.notifier.Notify(LevelInfo, "Cart cleared")
	return nil
}

func (c *Controller) handleCheckout(ctx context.Context, ev Event) error {
	c.mu.Lock()
	contact := c.phone
	c.mu.Unlock()
	if ev.Text != "" {
		contact = ev.Text
	}

	receipt, err := c.checkout.Submit(ctx, checkout.Request{Phone: contact, Comment: ev.Comment})
	if err != nil {
		level, msg := checkoutMessage(err)
		c.notifier.Notify(level, msg)
		return err
	}

	c.mu.Lock()
	c.phone = ""
	c.phoneErr = nil
	c.mu.Unlock()

	c.notifier.Notify(LevelSuccess, fmt.Sprintf("Order %s placed! Opening WhatsApp...", receipt.OrderNumber))
	return nil
}

func (c *Controller) handleCheckoutDismiss(context.Context, Event) error {
	c.checkout.Reset()
	return nil
}

func (c *Controller) handleRefresh(ctx context.Context, _ Event) error {
	return c.loadCatalog(ctx, false)
}

func (c *Controller) handleRetry(ctx context.Context, _ Event) error {
	return c.loadCatalog(ctx, true)
}

// handleVisible reloads the catalogue when the front end regains focus and
// the cached list is older than the visibility refresh age.
func (c *Controller) handleVisible(ctx context.Context, _ Event) error {
	res, refreshed, err := c.catalog.RefreshIfOlder(ctx, c.opts.VisibilityRefresh)
	if err != nil {
		c.mu.Lock()
		c.catalogErr = err
		c.mu.Unlock()
		c.notifier.Notify(LevelError, "Could not load products. Check your connection and try again.")
		return err
	}
	if refreshed {
		c.setProducts(res)
	}
	return nil
}

func (c *Controller) handleSort(_ context.Context, ev Event) error {
	mode, err := catalog.ParseSortMode(ev.Text)
	if err != nil {
		c.notifier.Notify(LevelWarning, err.Error())
		return err
	}
	c.mu.Lock()
	c.sort = mode
	c.mu.Unlock()
	return nil
}

// handlePhoneInput reformats the phone field as the customer types. Errors
// are shown inline through the view only.
func (c *Controller) handlePhoneInput(_ context.Context, ev Event) error {
	formatted := phone.Format(ev.Text)
	var err error
	if formatted != "" {
		err = phone.Validate(formatted)
	}

	c.mu.Lock()
	c.phone = formatted
	c.phoneErr = err
	c.mu.Unlock()
	return nil
}

func (c *Controller) handleSeasonTitle(ctx context.Context, ev Event) error {
	title := strings.TrimSpace(ev.Text)
	if title == "" {
		title = c.opts.DefaultSeasonTitle
	}

	c.mu.Lock()
	c.seasonTitle = title
	c.mu.Unlock()

	if err := c.store.SetSeasonTitle(ctx, title); err != nil {
		c.logger.Warn().Err(err).Msg("failed to save season title")
	}
	return nil
}
