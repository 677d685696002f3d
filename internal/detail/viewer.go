// Package detail drives the product detail sheet: which product is shown,
// prev/next and swipe navigation over the current carousel.
package detail

import (
	"mumz-advisor/internal/catalog"
)

// MinSwipeDistance is the horizontal travel, in CSS pixels, a touch must
// cover to count as a swipe.
const MinSwipeDistance = 50

type Viewer struct {
	open     bool
	products []catalog.Product
	index    int
	current  *catalog.Product
	expanded bool
}

// Open shows product within list. When the product is not in list the
// sheet still opens on it but navigation starts from the first position.
func (v *Viewer) Open(product catalog.Product, list []catalog.Product) {
	v.open = true
	v.products = append([]catalog.Product(nil), list...)
	v.index = 0
	if i := catalog.IndexOf(v.products, product.ID); i >= 0 {
		v.index = i
	}
	p := product
	v.current = &p
	v.expanded = false
}

// Close hides the sheet and forgets the product.
func (v *Viewer) Close() {
	v.open = false
	v.current = nil
	v.products = nil
	v.index = 0
	v.expanded = false
}

func (v *Viewer) IsOpen() bool { return v.open }

func (v *Viewer) Current() (catalog.Product, bool) {
	if v.current == nil {
		return catalog.Product{}, false
	}
	return *v.current, true
}

// Position is the 1-based index and the list length, for "2 of 5".
func (v *Viewer) Position() (int, int) {
	if v.current == nil {
		return 0, 0
	}
	return v.index + 1, len(v.products)
}

func (v *Viewer) HasNext() bool {
	return v.open && len(v.products) > 1 && v.index < len(v.products)-1
}

func (v *Viewer) HasPrev() bool {
	return v.open && len(v.products) > 1 && v.index > 0
}

// Next moves forward; a no-op at the end of the list.
func (v *Viewer) Next() bool {
	if !v.HasNext() {
		return false
	}
	v.move(v.index + 1)
	return true
}

// Prev moves back; a no-op at the start of the list.
func (v *Viewer) Prev() bool {
	if !v.HasPrev() {
		return false
	}
	v.move(v.index - 1)
	return true
}

// Swipe interprets a touch from startX to endX. Moving left past the
// threshold goes to the next product, moving right to the previous one.
func (v *Viewer) Swipe(startX, endX float64) bool {
	distance := startX - endX
	switch {
	case distance > MinSwipeDistance:
		return v.Next()
	case distance < -MinSwipeDistance:
		return v.Prev()
	}
	return false
}

func (v *Viewer) ToggleDescription() {
	if v.current != nil {
		v.expanded = !v.expanded
	}
}

func (v *Viewer) DescriptionExpanded() bool { return v.expanded }

// CanAddToCart is false once the shown product is already in the cart.
func (v *Viewer) CanAddToCart(inCart func(id string) bool) bool {
	if v.current == nil {
		return false
	}
	return !inCart(v.current.ID)
}

func (v *Viewer) move(i int) {
	v.index = i
	p := v.products[i]
	v.current = &p
	v.expanded = false
}
