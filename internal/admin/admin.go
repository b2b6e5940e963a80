// Package admin implements the product and order management panel.
//
// A Panel holds the admin session. The bearer token is kept in the local
// store so a restarted panel can pick it up again. Any call answered with
// 401 ends the session; logout listeners fire exactly once per session even
// when several calls fail concurrently.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"belekbox/internal/apiclient"
	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// Confirmation prompts.
const (
	ConfirmDelete  = "Delete this product? This cannot be undone."
	ConfirmHideAll = "Hide ALL products?"
	ConfirmShowAll = "Show ALL products?"
)

// API is the admin surface of the shop API.
type API interface {
	Login(ctx context.Context, password string) (string, error)
	AdminProducts(ctx context.Context, token string) ([]model.Product, error)
	CreateProduct(ctx context.Context, token string, form apiclient.ProductForm) (int64, error)
	UpdateProduct(ctx context.Context, token string, id int64, form apiclient.ProductForm) error
	DeleteProduct(ctx context.Context, token string, id int64) error
	HideAll(ctx context.Context, token string) error
	ShowAll(ctx context.Context, token string) error
	Orders(ctx context.Context, token string) ([]model.Order, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool {
	return f(ctx, message)
}

// Panel is an admin session.
type Panel struct {
	mu         sync.Mutex
	token      string
	generation uint64
	listeners  []func()

	api     API
	store   *localstore.Store
	confirm Confirmer
	logger  zerolog.Logger
}

// New creates a logged-out panel.
func New(api API, store *localstore.Store, confirm Confirmer, logger zerolog.Logger) *Panel {
	return &Panel{
		api:     api,
		store:   store,
		confirm: confirm,
		logger:  logger.With().Str("component", "admin").Logger(),
	}
}

// OnLogout registers fn to run when the session ends.
func (p *Panel) OnLogout(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// LoggedIn reports whether the panel holds a token.
func (p *Panel) LoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token != ""
}

// Login authenticates with password and saves the token.
func (p *Panel) Login(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return model.NewValidationError("password is required")
	}

	token, err := p.api.Login(ctx, password)
	if err != nil {
		p.logger.Warn().Err(err).Msg("admin login failed")
		return err
	}

	p.startSession(token)
	if err := p.store.SetAdminToken(ctx, token); err != nil {
		p.logger.Warn().Err(err).Msg("failed to save admin token")
	}

	p.logger.Info().Msg("admin logged in")
	return nil
}

// Restore resumes a session from a saved token. It reports whether one was
// found; the token is only checked by the next call.
func (p *Panel) Restore(ctx context.Context) (bool, error) {
	token, err := p.store.AdminToken(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	p.startSession(token)
	return true, nil
}

// Logout ends the session.
func (p *Panel) Logout(ctx context.Context) error {
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()
	return p.endSession(ctx, gen)
}

// Products lists every product.
func (p *Panel) Products(ctx context.Context) ([]model.Product, error) {
	token, gen, err := p.session()
	if err != nil {
		return nil, err
	}
	products, err := p.api.AdminProducts(ctx, token)
	if err != nil {
		return nil, p.handle(ctx, gen, err)
	}
	return products, nil
}

// Edit looks product id up in a freshly fetched list.
func (p *Panel) Edit(ctx context.Context, id int64) (*model.Product, error) {
	products, err := p.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, model.NewDomainError(model.ErrCodeNotFound, fmt.Sprintf("product %d not found", id))
}

// Save creates a product when id is 0 and updates product id otherwise. It
// returns the id of the saved product.
func (p *Panel) Save(ctx context.Context, id int64, form apiclient.ProductForm) (int64, error) {
	if err := validateForm(form); err != nil {
		return 0, err
	}

	token, gen, err := p.session()
	if err != nil {
		return 0, err
	}

	if id == 0 {
		newID, err := p.api.CreateProduct(ctx, token, form)
		if err != nil {
			return 0, p.handle(ctx, gen, err)
		}
		p.logger.Info().Int64("product_id", newID).Msg("product created")
		return newID, nil
	}

	if err := p.api.UpdateProduct(ctx, token, id, form); err != nil {
		return 0, p.handle(ctx, gen, err)
	}
	p.logger.Info().Int64("product_id", id).Msg("product updated")
	return id, nil
}

// Delete removes product id after confirmation. It reports whether the
// operator confirmed.
func (p *Panel) Delete(ctx context.Context, id int64) (bool, error) {
	return p.confirmed(ctx, ConfirmDelete, func(token string) error {
		return p.api.DeleteProduct(ctx, token, id)
	})
}

// HideAll marks every product unavailable after confirmation.
func (p *Panel) HideAll(ctx context.Context) (bool, error) {
	return p.confirmed(ctx, ConfirmHideAll, func(token string) error {
		return p.api.HideAll(ctx, token)
	})
}

// ShowAll marks every product available after confirmation.
func (p *Panel) ShowAll(ctx context.Context) (bool, error) {
	return p.confirmed(ctx, ConfirmShowAll, func(token string) error {
		return p.api.ShowAll(ctx, token)
	})
}

// Orders lists all orders, newest first.
func (p *Panel) Orders(ctx context.Context) ([]model.Order, error) {
	token, gen, err := p.session()
	if err != nil {
		return nil, err
	}
	orders, err := p.api.Orders(ctx, token)
	if err != nil {
		return nil, p.handle(ctx, gen, err)
	}
	return orders, nil
}

// OrderLines decodes the cart lines stored with an order.
func OrderLines(order model.Order) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	if len(order.Items) == 0 {
		return lines, nil
	}
	if err := json.Unmarshal(order.Items, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode items of order %s: %w", order.OrderNumber, err)
	}
	return lines, nil
}

func (p *Panel) confirmed(ctx context.Context, prompt string, fn func(token string) error) (bool, error) {
	token, gen, err := p.session()
	if err != nil {
		return false, err
	}
	if p.confirm != nil && !p.confirm.Confirm(ctx, prompt) {
		return false, nil
	}
	if err := fn(token); err != nil {
		return true, p.handle(ctx, gen, err)
	}
	return true, nil
}

func (p *Panel) session() (string, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", p.generation, model.NewDomainError(model.ErrCodeAuth, "not logged in")
	}
	return p.token, p.generation, nil
}

func (p *Panel) startSession(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	p.generation++
}

// handle ends session gen when err is an authorisation failure.
func (p *Panel) handle(ctx context.Context, gen uint64, err error) error {
	if errors.Is(err, model.ErrAuth) {
		p.logger.Warn().Err(err).Msg("admin session rejected")
		if endErr := p.endSession(ctx, gen); endErr != nil {
			p.logger.Warn().Err(endErr).Msg("failed to clear admin token")
		}
	}
	return err
}

// endSession clears session gen. Only the first caller for a given session
// clears the token and notifies listeners.
func (p *Panel) endSession(ctx context.Context, gen uint64) error {
	p.mu.Lock()
	if p.token == "" || p.generation != gen {
		p.mu.Unlock()
		return nil
	}
	p.token = ""
	p.generation++
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()

	err := p.store.ClearAdminToken(ctx)

	for _, fn := range listeners {
		fn()
	}
	p.logger.Info().Msg("admin logged out")
	return err
}

func validateForm(form apiclient.ProductForm) error {
	switch {
	case strings.TrimSpace(form.Name) == "":
		return model.NewValidationError("product name is required")
	case strings.TrimSpace(form.Description) == "":
		return model.NewValidationError("product description is required")
	case form.Price < 0:
		return model.NewValidationError("product price must not be negative")
	}
	return nil
}
