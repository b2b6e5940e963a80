package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type failingBackend struct {
	localstore.Backend
}

func (failingBackend) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func newTestManager(t *testing.T) (*Manager, *localstore.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := localstore.New(localstore.NewMemoryBackend())
	m := NewManager(store, Options{Now: clock.Now}, zerolog.Nop())
	return m, store, clock
}

func box(id int64, price int64) model.Product {
	return model.Product{ID: id, Name: "Box", Price: price, IsAvailable: true}
}

func TestManager_AddTwiceIncrementsQuantity(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	require.NoError(t, m.Add(ctx, box(1, 1500)))
	require.NoError(t, m.Add(ctx, box(1, 1500)))

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 3000.0, m.Total())
	assert.Equal(t, 2, m.Count())
}

func TestManager_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	require.NoError(t, m.Add(ctx, box(3, 100)))
	require.NoError(t, m.Add(ctx, box(1, 200)))
	require.NoError(t, m.Add(ctx, box(3, 100)))

	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
}

func TestManager_AddRejectsMalformedProduct(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		product model.Product
	}{
		{name: "missing id", product: model.Product{Name: "Box", Price: 100}},
		{name: "blank name", product: model.Product{ID: 1, Name: "  ", Price: 100}},
		{name: "missing price", product: model.Product{ID: 1, Name: "Box", Price: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestManager(t)
			called := false
			m.OnChange(func(Snapshot) { called = true })

			err := m.Add(ctx, tt.product)

			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Zero(t, m.Len())
			assert.False(t, called)
		})
	}
}

func TestManager_SetQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("zero removes the line", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		require.NoError(t, m.Add(ctx, box(1, 100)))

		clamped, err := m.SetQuantity(ctx, 1, 0)

		require.NoError(t, err)
		assert.False(t, clamped)
		assert.Zero(t, m.Len())
	})

	t.Run("above limit clamps to 99", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		require.NoError(t, m.Add(ctx, box(1, 100)))

		clamped, err := m.SetQuantity(ctx, 1, 150)

		require.NoError(t, err)
		assert.True(t, clamped)
		assert.Equal(t, 99, m.Items()[0].Quantity)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		require.NoError(t, m.Add(ctx, box(1, 100)))

		_, err := m.SetQuantity(ctx, 42, 5)

		require.NoError(t, err)
		assert.Equal(t, 1, m.Items()[0].Quantity)
	})

	t.Run("negative removes the line", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		require.NoError(t, m.Add(ctx, box(1, 100)))
		require.NoError(t, m.Add(ctx, box(2, 100)))

		clamped, err := m.SetQuantity(ctx, 1, -5)

		require.NoError(t, err)
		assert.False(t, clamped)
		require.Len(t, m.Items(), 1)
		assert.Equal(t, int64(2), m.Items()[0].ID)
	})
}

func TestManager_AddCountsEveryCall(t *testing.T) {
	ctx := context.Background()

	for _, calls := range []int{1, 3, 99, 100, 120} {
		m, _, _ := newTestManager(t)
		notified := 0
		m.OnChange(func(Snapshot) { notified++ })

		for i := 0; i < calls; i++ {
			require.NoError(t, m.Add(ctx, box(1, 100)))
		}

		items := m.Items()
		require.Len(t, items, 1, "calls=%d", calls)
		assert.Equal(t, calls, items[0].Quantity, "calls=%d", calls)
		assert.Equal(t, calls, notified, "calls=%d", calls)
	}
}

func TestManager_TotalOfEmptyCart(t *testing.T) {
	m, _, _ := newTestManager(t)

	assert.Equal(t, 0.0, m.Total())
	assert.Zero(t, m.Count())
	assert.Equal(t, 0.0, m.Snapshot().Total)
}

func TestManager_Total(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	require.NoError(t, m.Add(ctx, box(1, 100)))
	require.NoError(t, m.Add(ctx, box(1, 100)))
	require.NoError(t, m.Add(ctx, box(2, 50)))

	assert.Equal(t, 250.0, m.Total())
}

func TestManager_RemoveAbsentDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	require.NoError(t, m.Add(ctx, box(1, 100)))

	calls := 0
	m.OnChange(func(Snapshot) { calls++ })

	require.NoError(t, m.Remove(ctx, 7))
	assert.Equal(t, 0, calls)

	require.NoError(t, m.Remove(ctx, 1))
	assert.Equal(t, 1, calls)
	assert.Zero(t, m.Len())
}

func TestManager_OnChangeReceivesSnapshot(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	var got Snapshot
	m.OnChange(func(s Snapshot) { got = s })

	require.NoError(t, m.Add(ctx, box(1, 250)))

	assert.Len(t, got.Items, 1)
	assert.Equal(t, 250.0, got.Total)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, clock.now, got.LastUpdated)
}

func TestManager_WritesThrough(t *testing.T) {
	ctx := context.Background()
	m, store, clock := newTestManager(t)

	require.NoError(t, m.Add(ctx, box(5, 1200)))

	raw, ok, err := store.GetString(ctx, localstore.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)

	var persisted []LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, int64(5), persisted[0].ID)
	assert.Equal(t, 1200.0, persisted[0].Price)

	updated, ok, err := store.GetTime(ctx, localstore.KeyCartLastUpdated)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, updated.Equal(clock.now))

	require.NoError(t, m.Clear(ctx))
	raw, _, err = store.GetString(ctx, localstore.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestManager_PersistFailureStillNotifies(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(failingBackend{Backend: localstore.NewMemoryBackend()})
	m := NewManager(store, Options{}, zerolog.Nop())

	notified := false
	m.OnChange(func(Snapshot) { notified = true })

	err := m.Add(ctx, box(1, 100))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cart")
	assert.True(t, notified)
	assert.Equal(t, 1, m.Len())
}

func TestManager_TotalWithNonNumericFields(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)

	raw := `[
		{"id": 1, "name": "A", "price": "abc", "quantity": 2},
		{"id": 2, "name": "B", "price": "1500", "quantity": "2"},
		{"id": 3, "name": "C", "price": 400, "quantity": 1}
	]`
	require.NoError(t, store.SetString(ctx, localstore.KeyCart, raw))

	_, err := m.Restore(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3400.0, m.Total())
	assert.Equal(t, 5, m.Count())
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("recent cart is not expired", func(t *testing.T) {
		m, store, clock := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart, `[{"id":1,"name":"A","price":100,"quantity":3}]`))
		require.NoError(t, store.SetTime(ctx, localstore.KeyCartLastUpdated, clock.now.Add(-24*time.Hour)))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.False(t, result.Expired)
		assert.Equal(t, 1, result.Items)
		assert.Equal(t, 3, m.Count())
	})

	t.Run("old cart is reported expired but kept", func(t *testing.T) {
		m, store, clock := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart, `[{"id":1,"name":"A","price":100,"quantity":1}]`))
		require.NoError(t, store.SetTime(ctx, localstore.KeyCartLastUpdated, clock.now.Add(-8*24*time.Hour)))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.True(t, result.Expired)
		assert.Equal(t, 8*24*time.Hour, result.Age)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("empty old cart is not expired", func(t *testing.T) {
		m, store, clock := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart, `[]`))
		require.NoError(t, store.SetTime(ctx, localstore.KeyCartLastUpdated, clock.now.Add(-30*24*time.Hour)))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.False(t, result.Expired)
	})

	t.Run("corrupt cart starts empty", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart, `{not json`))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.Zero(t, result.Items)
		assert.Zero(t, m.Len())
	})

	t.Run("lines with zero quantity are dropped", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart, `[{"id":1,"name":"A","price":100,"quantity":0},{"id":2,"name":"B","price":100,"quantity":1}]`))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Items)
		assert.Equal(t, int64(2), m.Items()[0].ID)
	})

	t.Run("repeated ids are merged in insertion order", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		require.NoError(t, store.SetString(ctx, localstore.KeyCart,
			`[{"id":1,"name":"A","price":100,"quantity":5},{"id":2,"name":"B","price":50,"quantity":1},{"id":1,"name":"A","price":100,"quantity":2}]`))

		result, err := m.Restore(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Items)
		items := m.Items()
		require.Len(t, items, 2)
		assert.Equal(t, int64(1), items[0].ID)
		assert.Equal(t, 7, items[0].Quantity)
		assert.Equal(t, int64(2), items[1].ID)
		assert.Equal(t, 750.0, m.Total())
	})
}

func TestLineItem_UnmarshalJSON(t *testing.T) {
	var item LineItem
	err := json.Unmarshal([]byte(`{"id":"7","name":"Box","price":null,"quantity":2.0,"addedAt":"2025-03-01T10:00:00Z"}`), &item)

	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, "Box", item.Name)
	assert.Zero(t, item.Price)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), item.AddedAt)
	assert.Zero(t, item.Subtotal())
}
