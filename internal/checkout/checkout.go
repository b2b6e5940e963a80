// Package checkout turns the cart into an order.
//
// A Flow moves Idle -> Submitting -> Success. A failed submission returns
// the flow to Idle with the error recorded and the cart untouched, so the
// customer can retry. Only one submission may be in flight at a time.
package checkout

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"belekbox/internal/model"
	"belekbox/internal/phone"

	"github.com/rs/zerolog"
)

// State is the checkout state.
type State int

const (
	Idle State = iota
	Submitting
	Success
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Cart is the part of the cart manager the flow needs.
type Cart interface {
	Len() int
	Total() float64
	MarshalItems() ([]byte, error)
	Clear(ctx context.Context) error
}

// Submitter sends an order to the shop.
type Submitter interface {
	SubmitOrder(ctx context.Context, order model.OrderRequest) (*model.OrderResponse, error)
}

// Request carries the optional contact details entered by the customer.
type Request struct {
	Phone   string
	Comment string
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderNumber string
	WhatsAppURL string
}

// Flow is the checkout state machine.
type Flow struct {
	mu      sync.Mutex
	state   State
	lastErr error
	receipt *Receipt

	cart      Cart
	submitter Submitter
	logger    zerolog.Logger
}

// New creates an idle flow.
func New(cart Cart, submitter Submitter, logger zerolog.Logger) *Flow {
	return &Flow{
		cart:      cart,
		submitter: submitter,
		logger:    logger.With().Str("component", "checkout").Logger(),
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the error of the most recent failed submission.
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Receipt returns the receipt of the last successful submission.
func (f *Flow) Receipt() *Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// Reset returns a finished flow to Idle. It has no effect while a
// submission is in flight.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Submitting {
		f.state = Idle
		f.lastErr = nil
	}
}

// Submit places the order. An empty cart fails with EMPTY_CART and an
// invalid phone with VALIDATION_ERROR, both before any network call.
// While another submission is in flight it fails with CHECKOUT_IN_PROGRESS
// and changes nothing.
func (f *Flow) Submit(ctx context.Context, req Request) (*Receipt, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return nil, model.ErrCheckoutInProgress
	}
	if err := f.validate(req); err != nil {
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}
	f.state = Submitting
	f.lastErr = nil
	f.mu.Unlock()

	order, err := f.buildOrder(req)
	if err != nil {
		return nil, f.fail(err)
	}

	resp, err := f.submitter.SubmitOrder(ctx, order)
	if err != nil {
		f.logger.Warn().Err(err).Msg("order submission failed")
		return nil, f.fail(err)
	}

	if err := f.cart.Clear(ctx); err != nil {
		f.logger.Error().Err(err).Str("order_number", resp.OrderNumber).Msg("order placed but cart could not be cleared")
	}

	receipt := &Receipt{OrderNumber: resp.OrderNumber, WhatsAppURL: resp.WhatsAppURL}

	f.mu.Lock()
	f.state = Success
	f.receipt = receipt
	f.mu.Unlock()

	f.logger.Info().
		Str("order_number", receipt.OrderNumber).
		Int64("total_amount", order.TotalAmount).
		Msg("order placed")

	return receipt, nil
}

func (f *Flow) validate(req Request) error {
	if f.cart.Len() == 0 {
		return model.ErrEmptyCart
	}
	return phone.Validate(req.Phone)
}

func (f *Flow) buildOrder(req Request) (model.OrderRequest, error) {
	items, err := f.cart.MarshalItems()
	if err != nil {
		return model.OrderRequest{}, err
	}

	total := math.Round(f.cart.Total())
	if math.IsNaN(total) || math.IsInf(total, 0) {
		total = 0
	}

	contact := strings.TrimSpace(req.Phone)
	if contact != "" {
		contact = phone.Format(contact)
	}

	return model.OrderRequest{
		Items:         string(items),
		TotalAmount:   int64(total),
		ClientPhone:   contact,
		ClientComment: strings.TrimSpace(req.Comment),
	}, nil
}

func (f *Flow) fail(err error) error {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		err = model.WrapDomainError(model.ErrCodeNetwork, "failed to submit order", err)
	}

	f.mu.Lock()
	f.state = Idle
	f.lastErr = err
	f.mu.Unlock()
	return err
}
