// Package cart keeps the per-user cart and persists it on every change.
package cart

import (
	"errors"
	"fmt"
	"strconv"

	"mumz-advisor/internal/catalog"
	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/store"
)

// ErrPaymentsDisabled is returned by Checkout; there is no payment flow.
var ErrPaymentsDisabled = errors.New("payments are not enabled")

// PaymentsDisabledNotice is the toast shown when checkout is attempted.
const PaymentsDisabledNotice = "Hold your horses, we don't have payments enabled :)"

// ErrNoUser is returned when the cart is mutated before a profile exists.
var ErrNoUser = errors.New("no active user")

type Item struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Price           string `json:"price"`
	Brand           string `json:"brand"`
	FullDescription string `json:"fullDescription"`
	Image           string `json:"image,omitempty"`
}

// FromProduct projects the subset of product fields the cart keeps.
func FromProduct(p catalog.Product) Item {
	return Item{
		ID:              p.ID,
		Title:           p.Title,
		Price:           p.Price,
		Brand:           p.Brand,
		FullDescription: p.FullDescription,
		Image:           p.Image,
	}
}

// Cart is the in-memory mirror of "cart_{userId}". It is not safe for
// concurrent use; the owning session serializes access.
type Cart struct {
	kv     store.KV
	userID string
	items  []Item
}

func New(kv store.KV) *Cart {
	return &Cart{kv: kv, items: []Item{}}
}

// Switch loads the cart of userID and discards whatever was in memory. A
// corrupt stored cart loads as empty and the error is returned wrapped in
// store.ErrCorrupt so the caller can log it.
func (c *Cart) Switch(userID string) error {
	c.userID = userID
	c.items = []Item{}
	if userID == "" {
		return nil
	}
	var items []Item
	found, err := store.LoadJSON(c.kv, profile.CartKey(userID), &items)
	if err != nil {
		return err
	}
	if found && items != nil {
		c.items = items
	}
	return nil
}

func (c *Cart) UserID() string { return c.userID }

// Add appends the product unless an item with the same id is present.
// It reports whether the cart changed.
func (c *Cart) Add(p catalog.Product) (bool, error) {
	if c.userID == "" {
		return false, ErrNoUser
	}
	if c.Contains(p.ID) {
		return false, nil
	}
	c.items = append(c.items, FromProduct(p))
	return true, c.persist()
}

func (c *Cart) Remove(id string) (bool, error) {
	if c.userID == "" {
		return false, ErrNoUser
	}
	kept := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	removed := len(kept) != len(c.items)
	c.items = kept
	return removed, c.persist()
}

func (c *Cart) Contains(id string) bool {
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (c *Cart) Items() []Item {
	return append([]Item{}, c.items...)
}

func (c *Cart) Count() int { return len(c.items) }

// Total sums the numeric part of every price; unparsable prices count as 0.
func (c *Cart) Total() string {
	return Total(c.items)
}

func Total(items []Item) string {
	var sum float64
	for _, it := range items {
		sum += catalog.ParsePrice(it.Price)
	}
	return catalog.FormatTotal(sum)
}

// Badge is the header counter text: empty for an empty cart, "99+" past 99.
func Badge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > 99:
		return "99+"
	default:
		return strconv.Itoa(count)
	}
}

// Checkout always fails: payments are not part of this product.
func (c *Cart) Checkout() error {
	return ErrPaymentsDisabled
}

func (c *Cart) persist() error {
	if err := store.SaveJSON(c.kv, profile.CartKey(c.userID), c.items); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
