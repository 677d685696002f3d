package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mumz-advisor/internal/catalog"
)

func products(ids ...string) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Product{ID: id, Title: "P" + id})
	}
	return out
}

func currentID(t *testing.T, v *Viewer) string {
	t.Helper()
	p, ok := v.Current()
	assert.True(t, ok)
	return p.ID
}

func TestOpenAndNavigate(t *testing.T) {
	list := products("a", "b", "c")
	var v Viewer

	v.Open(list[1], list)
	assert.True(t, v.IsOpen())
	i, n := v.Position()
	assert.Equal(t, 2, i)
	assert.Equal(t, 3, n)

	assert.True(t, v.Next())
	assert.Equal(t, "c", currentID(t, &v))
	assert.False(t, v.Next(), "bounded at the end")
	assert.Equal(t, "c", currentID(t, &v))

	assert.True(t, v.Prev())
	assert.True(t, v.Prev())
	assert.False(t, v.Prev(), "bounded at the start")
	assert.Equal(t, "a", currentID(t, &v))
}

func TestSingleProductHasNoNavigation(t *testing.T) {
	list := products("a")
	var v Viewer
	v.Open(list[0], list)

	assert.False(t, v.HasNext())
	assert.False(t, v.HasPrev())
	assert.False(t, v.Swipe(300, 0))
}

func TestSwipeThreshold(t *testing.T) {
	list := products("a", "b", "c")
	var v Viewer
	v.Open(list[1], list)

	assert.False(t, v.Swipe(200, 150), "exactly the threshold is not a swipe")
	assert.Equal(t, "b", currentID(t, &v))

	assert.True(t, v.Swipe(200, 149))
	assert.Equal(t, "c", currentID(t, &v))

	assert.True(t, v.Swipe(100, 151))
	assert.Equal(t, "b", currentID(t, &v))
}

func TestDescriptionToggleResetsOnMove(t *testing.T) {
	list := products("a", "b")
	var v Viewer
	v.Open(list[0], list)

	v.ToggleDescription()
	assert.True(t, v.DescriptionExpanded())
	v.Next()
	assert.False(t, v.DescriptionExpanded())
}

func TestCanAddToCart(t *testing.T) {
	list := products("a", "b")
	var v Viewer
	assert.False(t, v.CanAddToCart(func(string) bool { return false }))

	v.Open(list[0], list)
	inCart := map[string]bool{"a": true}
	assert.False(t, v.CanAddToCart(func(id string) bool { return inCart[id] }))
	v.Next()
	assert.True(t, v.CanAddToCart(func(id string) bool { return inCart[id] }))
}

func TestClose(t *testing.T) {
	list := products("a", "b")
	var v Viewer
	v.Open(list[0], list)
	v.Close()

	assert.False(t, v.IsOpen())
	_, ok := v.Current()
	assert.False(t, ok)
	assert.False(t, v.Next())
}

func TestOpenProductOutsideList(t *testing.T) {
	list := products("a", "b")
	var v Viewer
	v.Open(catalog.Product{ID: "zz"}, list)

	assert.Equal(t, "zz", currentID(t, &v))
	assert.True(t, v.Next())
	assert.Equal(t, "b", currentID(t, &v))
}
