package cart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mumz-advisor/internal/catalog"
	"mumz-advisor/internal/store"
)

func product(id, price string) catalog.Product {
	return catalog.Product{ID: id, Title: "Item " + id, Price: price, Brand: "BrandX", FullDescription: "desc", Image: "img-" + id}
}

func TestAddIsIdempotentByID(t *testing.T) {
	// Arrange
	kv := store.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Switch("sara-1234"))

	// Act
	changed, err := c.Add(product("S1", "AED 10.00"))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = c.Add(product("S1", "AED 10.00"))
	require.NoError(t, err)

	// Assert
	assert.False(t, changed)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, Item{ID: "S1", Title: "Item S1", Price: "AED 10.00", Brand: "BrandX", FullDescription: "desc", Image: "img-S1"}, c.Items()[0])
}

func TestAddPersistsImmediately(t *testing.T) {
	kv := store.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Switch("sara-1234"))
	_, err := c.Add(product("S1", "AED 10.00"))
	require.NoError(t, err)

	raw, err := kv.Get("cart_sara-1234")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"S1","title":"Item S1","price":"AED 10.00","brand":"BrandX","fullDescription":"desc","image":"img-S1"}]`, string(raw))
}

func TestRemove(t *testing.T) {
	kv := store.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Switch("u"))
	_, _ = c.Add(product("A", "AED 1"))
	_, _ = c.Add(product("B", "AED 2"))

	removed, err := c.Remove("A")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = c.Remove("missing")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.False(t, c.Contains("A"))
	assert.True(t, c.Contains("B"))

	reloaded := New(kv)
	require.NoError(t, reloaded.Switch("u"))
	assert.Equal(t, []string{"B"}, ids(reloaded.Items()))
}

func TestTotal(t *testing.T) {
	assert.Equal(t, "AED 15.50", Total([]Item{{Price: "AED 10.00"}, {Price: "AED 5.50"}}))
	assert.Equal(t, "AED 10.00", Total([]Item{{Price: "AED 10.00"}, {Price: "N/A"}}))
	assert.Equal(t, "AED 0.00", Total(nil))
}

func TestSwitchScopesByUser(t *testing.T) {
	kv := store.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Switch("alice-1000"))
	_, _ = c.Add(product("A", "AED 1"))

	require.NoError(t, c.Switch("bob-2000"))
	assert.Equal(t, 0, c.Count())
	_, _ = c.Add(product("B", "AED 2"))

	require.NoError(t, c.Switch("alice-1000"))
	assert.Equal(t, []string{"A"}, ids(c.Items()))
}

func TestSwitchCorruptCartLoadsEmpty(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Put("cart_u", []byte(`[{"id":`)))

	c := New(kv)
	err := c.Switch("u")
	assert.True(t, errors.Is(err, store.ErrCorrupt))
	assert.Equal(t, "u", c.UserID())
	assert.Equal(t, 0, c.Count())

	_, err = c.Add(product("A", "AED 1"))
	require.NoError(t, err)
	reloaded := New(kv)
	require.NoError(t, reloaded.Switch("u"))
	assert.Equal(t, 1, reloaded.Count())
}

func TestMutationsNeedUser(t *testing.T) {
	c := New(store.NewMemoryStore())
	_, err := c.Add(product("A", "AED 1"))
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = c.Remove("A")
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestBadgeAndCheckout(t *testing.T) {
	assert.Equal(t, "", Badge(0))
	assert.Equal(t, "7", Badge(7))
	assert.Equal(t, "99", Badge(99))
	assert.Equal(t, "99+", Badge(100))

	assert.ErrorIs(t, New(store.NewMemoryStore()).Checkout(), ErrPaymentsDisabled)
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
