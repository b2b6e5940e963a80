package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"belekbox/internal/cart"
	"belekbox/internal/catalog"
	"belekbox/internal/checkout"
	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	Level Level
	Text  string
}

type recorder struct {
	mu       sync.Mutex
	messages []message
}

func (r *recorder) Notify(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message{level, text})
}

func (r *recorder) last() message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return message{}
	}
	return r.messages[len(r.messages)-1]
}

type fakeFetcher struct {
	mu       sync.Mutex
	products []model.Product
	err      error
	calls    int
}

func (f *fakeFetcher) Products(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.products, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSubmitter struct {
	resp  *model.OrderResponse
	err   error
	calls int
	last  model.OrderRequest
}

func (s *fakeSubmitter) SubmitOrder(_ context.Context, order model.OrderRequest) (*model.OrderResponse, error) {
	s.calls++
	s.last = order
	return s.resp, s.err
}

type fixture struct {
	controller *Controller
	store      *localstore.Store
	cart       *cart.Manager
	fetcher    *fakeFetcher
	submitter  *fakeSubmitter
	notes      *recorder
	confirm    bool
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: localstore.New(localstore.NewMemoryBackend()),
		fetcher: &fakeFetcher{products: []model.Product{
			{ID: 1, Name: "Classic box", Price: 1500, IsAvailable: true},
			{ID: 2, Name: "Large box", Price: 3200, IsAvailable: true},
		}},
		submitter: &fakeSubmitter{resp: &model.OrderResponse{Success: true, OrderNumber: "BB-20250301-ABC123", WhatsAppURL: "https://wa.me/996501053515?text=x"}},
		notes:     &recorder{},
		confirm:   true,
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.now }
	logger := zerolog.Nop()

	f.cart = cart.NewManager(f.store, cart.Options{Now: now}, logger)
	cache := catalog.New(f.fetcher, f.store, catalog.Options{Now: now}, logger)
	flow := checkout.New(f.cart, f.submitter, logger)

	f.controller = New(Deps{
		Cart:      f.cart,
		Catalog:   cache,
		Checkout:  flow,
		Store:     f.store,
		Notifier:  f.notes,
		Confirmer: ConfirmFunc(func(context.Context, string) bool { return f.confirm }),
	}, Options{
		DefaultSeasonTitle:    "Gift boxes with delivery",
		FreeDeliveryThreshold: 3000,
	}, logger)
	return f
}

func TestController_StartLoadsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetSeasonTitle(ctx, "New Year boxes"))

	var views []View
	f.controller.OnRender(func(v View) { views = append(views, v) })

	require.NoError(t, f.controller.Start(ctx))

	require.NotEmpty(t, views)
	view := views[len(views)-1]
	assert.Equal(t, "New Year boxes", view.SeasonTitle)
	require.Len(t, view.Products, 2)
	assert.Equal(t, "1 500 som", view.Products[0].Price)
	assert.Equal(t, PlaceholderImage, view.Products[0].ImageURL)
	assert.True(t, view.CartEmpty)
	assert.False(t, view.CheckoutEnabled)
}

func TestController_StartOffersToClearExpiredCart(t *testing.T) {
	ctx := context.Background()

	for _, accept := range []bool{true, false} {
		f := newFixture(t)
		require.NoError(t, f.store.SetString(ctx, localstore.KeyCart, `[{"id":1,"name":"Box","price":100,"quantity":1}]`))
		require.NoError(t, f.store.SetTime(ctx, localstore.KeyCartLastUpdated, f.now.Add(-8*24*time.Hour)))
		f.confirm = accept

		require.NoError(t, f.controller.Start(ctx))

		if accept {
			assert.Zero(t, f.cart.Len())
			assert.Equal(t, message{LevelInfo, "Cart cleared because it expired"}, f.notes.last())
		} else {
			assert.Equal(t, 1, f.cart.Len())
		}
	}
}

func TestController_CartEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.controller.Start(ctx))
	product := f.controller.View().Products[0].Product

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: product}))
	assert.Equal(t, message{LevelSuccess, "Added to cart!"}, f.notes.last())

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventSetQuantity, ProductID: product.ID, Quantity: 150}))
	assert.Equal(t, message{LevelWarning, "Maximum quantity: 99"}, f.notes.last())
	assert.Equal(t, 99, f.cart.Items()[0].Quantity)

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventSetQuantity, ProductID: product.ID, Quantity: 0}))
	assert.Equal(t, message{LevelInfo, "Removed from cart"}, f.notes.last())
	assert.Zero(t, f.cart.Len())

	err := f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: model.Product{Name: "broken"}})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, message{LevelError, "Failed to add the product"}, f.notes.last())
}

func TestController_ClearNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: model.Product{ID: 1, Name: "Box", Price: 100}}))

	f.confirm = false
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventClearCart}))
	assert.Equal(t, 1, f.cart.Len())

	f.confirm = true
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventClearCart}))
	assert.Zero(t, f.cart.Len())
	assert.Equal(t, message{LevelInfo, "Cart cleared"}, f.notes.last())
}

func TestController_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	err := f.controller.Dispatch(context.Background(), Event{Kind: EventCheckout})

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Equal(t, message{LevelWarning, "Add products to the cart"}, f.notes.last())
	assert.Zero(t, f.submitter.calls)
}

func TestController_CheckoutSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: model.Product{ID: 1, Name: "Box", Price: 1500}}))
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventPhoneInput, Text: "0555123456"}))
	assert.Equal(t, "+996 555 123 456", f.controller.View().Phone)

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventCheckout, Comment: "gift wrap"}))

	view := f.controller.View()
	assert.True(t, view.CartEmpty)
	assert.Equal(t, "BB-20250301-ABC123", view.OrderNumber)
	assert.Equal(t, "https://wa.me/996501053515?text=x", view.WhatsAppURL)
	assert.Equal(t, "+996 555 123 456", f.submitter.last.ClientPhone)
	assert.Equal(t, "gift wrap", f.submitter.last.ClientComment)
	assert.Equal(t, LevelSuccess, f.notes.last().Level)

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventCheckoutDismiss}))
	assert.Empty(t, f.controller.View().WhatsAppURL)
}

func TestController_CheckoutServerFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.submitter.resp = nil
	f.submitter.err = model.NewDomainError(model.ErrCodeServer, "database is locked")
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: model.Product{ID: 1, Name: "Box", Price: 100}}))

	err := f.controller.Dispatch(ctx, Event{Kind: EventCheckout})

	assert.ErrorIs(t, err, model.ErrServer)
	assert.Equal(t, message{LevelError, "Error: database is locked"}, f.notes.last())
	view := f.controller.View()
	assert.False(t, view.CartEmpty)
	assert.True(t, view.CheckoutEnabled)
	assert.Equal(t, "database is locked", view.CheckoutError)
}

func TestController_CatalogFailureShowsRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.err = errors.New("connection refused")

	require.NoError(t, f.controller.Start(ctx))

	view := f.controller.View()
	assert.True(t, view.CanRetry)
	assert.NotEmpty(t, view.CatalogError)
	assert.Equal(t, LevelError, f.notes.last().Level)

	f.fetcher.mu.Lock()
	f.fetcher.err = nil
	f.fetcher.mu.Unlock()
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventRetryCatalog}))

	view = f.controller.View()
	assert.False(t, view.CanRetry)
	assert.Len(t, view.Products, 2)
}

func TestController_VisibleRefreshesStaleCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.controller.Start(ctx))
	require.Equal(t, 1, f.fetcher.callCount())

	f.now = f.now.Add(9 * time.Minute)
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventVisible}))
	assert.Equal(t, 1, f.fetcher.callCount())

	f.now = f.now.Add(2 * time.Minute)
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventVisible}))
	assert.Equal(t, 2, f.fetcher.callCount())
}

func TestController_SortAndSeasonTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.controller.Start(ctx))

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventSort, Text: "price_desc"}))
	assert.Equal(t, int64(2), f.controller.View().Products[0].ID)

	err := f.controller.Dispatch(ctx, Event{Kind: EventSort, Text: "random"})
	assert.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventSetSeasonTitle, Text: "Spring boxes"}))
	assert.Equal(t, "Spring boxes", f.controller.View().SeasonTitle)
	title, err := f.store.SeasonTitle(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Spring boxes", title)
}

func TestController_EventRegistry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.controller.Dispatch(ctx, Event{Kind: "unknown"})
	assert.ErrorIs(t, err, model.ErrValidation)

	var seen []EventKind
	f.controller.On(EventAddToCart, func(_ context.Context, ev Event) error {
		seen = append(seen, ev.Kind)
		return nil
	})
	require.NoError(t, f.controller.Dispatch(ctx, Event{Kind: EventAddToCart, Product: model.Product{ID: 1, Name: "Box", Price: 1}}))

	assert.Equal(t, []EventKind{EventAddToCart}, seen)
	assert.Equal(t, 1, f.cart.Len(), "built-in handler still runs first")
}

func TestController_AutoRefresh(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.controller.AutoRefresh(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.fetcher.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("auto refresh did not stop")
	}
}
