package cart

import (
	"errors"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/pricing"
	"github.com/fjod/go_cart/menu-order/internal/session"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem  = errors.New("line item must reference a product")
	ErrLineNotFound = errors.New("line not found in order")
)

// Cart accumulates line items on a session draft. Every mutation goes
// through the session so it is persisted.
type Cart struct {
	s *session.Session
}

func New(s *session.Session) *Cart {
	return &Cart{s: s}
}

// Add merges item into the line with the same signature, or appends it.
func (c *Cart) Add(item domain.LineItem) (domain.LineItem, error) {
	if item.ProductID == "" {
		return domain.LineItem{}, ErrInvalidItem
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	var result domain.LineItem
	err := c.s.Mutate(func(d *domain.Draft) error {
		sig := domain.Signature(item)
		for i := range d.Items {
			if domain.Signature(d.Items[i]) == sig {
				domain.Merge(&d.Items[i], item)
				result = d.Items[i].Clone()
				return nil
			}
		}

		line := item.Clone()
		if line.ID == "" {
			line.ID = domain.NewLineID()
		}
		d.Items = append(d.Items, line)
		result = line.Clone()
		return nil
	})
	return result, err
}

// Increment adds one unit to the first line of productID. Missing products
// are ignored.
func (c *Cart) Increment(productID string) {
	_ = c.s.Mutate(func(d *domain.Draft) error {
		if i := indexByProduct(d.Items, productID); i >= 0 {
			d.Items[i].Quantity++
		}
		return nil
	})
}

// Decrement removes one unit from the first line of productID, dropping the
// line when it reaches zero. Missing products are ignored.
func (c *Cart) Decrement(productID string) {
	_ = c.s.Mutate(func(d *domain.Draft) error {
		if i := indexByProduct(d.Items, productID); i >= 0 {
			d.Items = decrementAt(d.Items, i)
			resetIfEmpty(d)
		}
		return nil
	})
}

func (c *Cart) IncrementLine(lineID string) error {
	return c.s.Mutate(func(d *domain.Draft) error {
		i := indexByLine(d.Items, lineID)
		if i < 0 {
			return ErrLineNotFound
		}
		d.Items[i].Quantity++
		return nil
	})
}

func (c *Cart) DecrementLine(lineID string) error {
	return c.s.Mutate(func(d *domain.Draft) error {
		i := indexByLine(d.Items, lineID)
		if i < 0 {
			return ErrLineNotFound
		}
		d.Items = decrementAt(d.Items, i)
		resetIfEmpty(d)
		return nil
	})
}

func (c *Cart) RemoveLine(lineID string) error {
	return c.s.Mutate(func(d *domain.Draft) error {
		i := indexByLine(d.Items, lineID)
		if i < 0 {
			return ErrLineNotFound
		}
		d.Items = append(d.Items[:i], d.Items[i+1:]...)
		resetIfEmpty(d)
		return nil
	})
}

// Clear empties the order and resets checkout progress.
func (c *Cart) Clear() {
	_ = c.s.Mutate(func(d *domain.Draft) error {
		d.Reset()
		return nil
	})
}

func (c *Cart) Items() []domain.LineItem {
	var items []domain.LineItem
	c.s.View(func(d *domain.Draft) {
		items = domain.CloneItems(d.Items)
	})
	return items
}

func (c *Cart) Subtotal() decimal.Decimal {
	var total decimal.Decimal
	c.s.View(func(d *domain.Draft) {
		total = pricing.CartSubtotal(d.Items)
	})
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	c.s.View(func(d *domain.Draft) {
		for _, item := range d.Items {
			n += item.Quantity
		}
	})
	return n
}

func (c *Cart) Empty() bool {
	empty := true
	c.s.View(func(d *domain.Draft) {
		empty = len(d.Items) == 0
	})
	return empty
}

func decrementAt(items []domain.LineItem, i int) []domain.LineItem {
	if items[i].Quantity > 1 {
		items[i].Quantity--
		return items
	}
	return append(items[:i], items[i+1:]...)
}

// resetIfEmpty abandons the checkout once the last line is gone.
func resetIfEmpty(d *domain.Draft) {
	if len(d.Items) == 0 {
		d.Reset()
	}
}

func indexByProduct(items []domain.LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func indexByLine(items []domain.LineItem, lineID string) int {
	for i := range items {
		if items[i].ID == lineID {
			return i
		}
	}
	return -1
}
