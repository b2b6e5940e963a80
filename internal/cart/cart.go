// Package cart owns the shopping cart. Every mutation goes through Manager,
// which writes the whole cart through to the local store and then notifies
// change listeners so the view can be re-rendered.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// Default limits.
const (
	DefaultMaxQuantity = 99
	DefaultExpiry      = 7 * 24 * time.Hour
)

// Snapshot is an immutable view of the cart.
type Snapshot struct {
	Items       []LineItem
	Total       float64
	Count       int
	LastUpdated time.Time
}

// RestoreResult describes the cart loaded at startup.
type RestoreResult struct {
	Items int
	// Expired is set when a non-empty cart was last touched longer ago than
	// the expiry. The caller decides whether to clear it.
	Expired bool
	Age     time.Duration
}

// Options configures a Manager.
type Options struct {
	MaxQuantity int
	Expiry      time.Duration
	Now         func() time.Time
}

// Manager holds the in-memory cart.
type Manager struct {
	mu          sync.Mutex
	items       []LineItem
	lastUpdated time.Time

	store       *localstore.Store
	maxQuantity int
	expiry      time.Duration
	now         func() time.Time
	listeners   []func(Snapshot)
	logger      zerolog.Logger
}

// NewManager creates an empty cart manager persisting to store.
func NewManager(store *localstore.Store, opts Options, logger zerolog.Logger) *Manager {
	if opts.MaxQuantity < 1 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:       store,
		maxQuantity: opts.MaxQuantity,
		expiry:      opts.Expiry,
		now:         opts.Now,
		logger:      logger.With().Str("component", "cart").Logger(),
	}
}

// MaxQuantity returns the per-line quantity limit.
func (m *Manager) MaxQuantity() int {
	return m.maxQuantity
}

// OnChange registers fn to be called after every mutation.
func (m *Manager) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Add puts one unit of product into the cart. A product already in the cart
// has its quantity incremented. Add never clamps; the quantity limit only
// applies to SetQuantity.
func (m *Manager) Add(ctx context.Context, product model.Product) error {
	if err := validateProduct(product); err != nil {
		m.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("rejected malformed product")
		return err
	}

	m.mu.Lock()
	found := false
	for i := range m.items {
		if m.items[i].ID == product.ID {
			m.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		m.items = append(m.items, LineItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    float64(product.Price),
			Quantity: 1,
			AddedAt:  m.now(),
		})
	}
	return m.commitLocked(ctx)
}

// Remove deletes the line for id. Removing an absent product is a no-op.
func (m *Manager) Remove(ctx context.Context, id int64) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	return m.commitLocked(ctx)
}

// SetQuantity sets the quantity for id. Quantities below 1 remove the line;
// quantities above the limit are clamped and reported with clamped=true.
func (m *Manager) SetQuantity(ctx context.Context, id int64, n int) (clamped bool, err error) {
	if n < 1 {
		return false, m.Remove(ctx, id)
	}
	if n > m.maxQuantity {
		n = m.maxQuantity
		clamped = true
	}

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return clamped, nil
	}
	m.items[idx].Quantity = n
	return clamped, m.commitLocked(ctx)
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.items = nil
	return m.commitLocked(ctx)
}

// Total returns the sum of price times quantity over all lines.
func (m *Manager) Total() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalOf(m.items)
}

// Count returns the number of units in the cart.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countOf(m.items)
}

// Len returns the number of lines in the cart.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Items returns a copy of the cart lines in insertion order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LineItem(nil), m.items...)
}

// Snapshot returns the current cart state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Restore loads the persisted cart, replacing the in-memory one. Lines with
// a quantity below 1 are dropped and repeated product ids are merged into
// the first line, summing their quantities.
func (m *Manager) Restore(ctx context.Context) (RestoreResult, error) {
	raw, ok, err := m.store.GetString(ctx, localstore.KeyCart)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("failed to restore cart: %w", err)
	}

	var items []LineItem
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			m.logger.Warn().Err(err).Msg("persisted cart is unreadable, starting empty")
			items = nil
		}
	}

	valid := mergeLines(items)

	lastUpdated, _, err := m.store.GetTime(ctx, localstore.KeyCartLastUpdated)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("failed to restore cart: %w", err)
	}

	m.mu.Lock()
	m.items = valid
	m.lastUpdated = lastUpdated
	m.mu.Unlock()

	result := RestoreResult{Items: len(valid)}
	if len(valid) > 0 && !lastUpdated.IsZero() {
		result.Age = m.now().Sub(lastUpdated)
		result.Expired = result.Age > m.expiry
	}

	m.logger.Debug().
		Int("items", result.Items).
		Bool("expired", result.Expired).
		Msg("cart restored")

	return result, nil
}

// MarshalItems returns the JSON encoding of the cart lines, as submitted
// with an order.
func (m *Manager) MarshalItems() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return marshalItems(m.items)
}

// commitLocked persists the cart and notifies listeners. It must be called
// with m.mu held and releases it.
func (m *Manager) commitLocked(ctx context.Context) error {
	m.lastUpdated = m.now()
	data, err := marshalItems(m.items)
	snapshot := m.snapshotLocked()
	listeners := append([]func(Snapshot){}, m.listeners...)
	m.mu.Unlock()

	if err == nil {
		err = m.persist(ctx, data, snapshot.LastUpdated)
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to save cart")
	}

	for _, fn := range listeners {
		fn(snapshot)
	}
	return err
}

func (m *Manager) persist(ctx context.Context, data []byte, updated time.Time) error {
	if err := m.store.SetString(ctx, localstore.KeyCart, string(data)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if err := m.store.SetTime(ctx, localstore.KeyCartLastUpdated, updated); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (m *Manager) indexLocked(id int64) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Items:       append([]LineItem(nil), m.items...),
		Total:       totalOf(m.items),
		Count:       countOf(m.items),
		LastUpdated: m.lastUpdated,
	}
}

func mergeLines(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func validateProduct(p model.Product) error {
	switch {
	case p.ID == 0:
		return model.NewValidationError("product id is missing")
	case strings.TrimSpace(p.Name) == "":
		return model.NewValidationError("product name is missing")
	case p.Price < 0:
		return model.NewValidationError("product price is missing")
	}
	return nil
}

func marshalItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return data, nil
}

func totalOf(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func countOf(items []LineItem) int {
	count := 0
	for _, item := range items {
		if item.Quantity > 0 {
			count += item.Quantity
		}
	}
	return count
}
