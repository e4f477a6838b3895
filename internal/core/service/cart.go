package service

import (
	"sync"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// CartLine is one cart tuple. Lines are keyed by (product id, custom
// description): the same product with two different notes occupies two
// lines.
type CartLine struct {
	Product           domain.Product
	Quantity          int
	CustomDescription string
}

// Cart accumulates line items for one seller before submission. It is
// safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts one unit of the product in the cart, incrementing the quantity
// of an existing line with the same product id and description, or
// appending a new line.
func (c *Cart) Add(p domain.Product, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID && c.lines[i].CustomDescription == description {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1, CustomDescription: description})
}

// UpdateQuantity sets the quantity of the matching line, removing it when
// the new quantity is zero or negative.
func (c *Cart) UpdateQuantity(productID string, quantity int, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(productID, description)
		return
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == productID && c.lines[i].CustomDescription == description {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Remove deletes the matching line outright.
func (c *Cart) Remove(productID, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID, description)
}

// SplitUnit detaches one unit from the matching line into its own line
// carrying newDescription; the remaining quantity stays on the original
// line. A single-unit line just gets its description replaced.
func (c *Cart) SplitUnit(productID, fromDescription, newDescription string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ID != productID || c.lines[i].CustomDescription != fromDescription {
			continue
		}
		if c.lines[i].Quantity <= 1 {
			c.lines[i].CustomDescription = newDescription
			return
		}
		c.lines[i].Quantity--
		product := c.lines[i].Product
		c.mergeLocked(product, newDescription)
		return
	}
}

func (c *Cart) mergeLocked(p domain.Product, description string) {
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID && c.lines[i].CustomDescription == description {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1, CustomDescription: description})
}

func (c *Cart) removeLocked(productID, description string) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if !(line.Product.ID == productID && line.CustomDescription == description) {
			kept = append(kept, line)
		}
	}
	c.lines = kept
}

// ItemCount is the sum of quantities across every line.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// TotalUSD is the sum of unit price times quantity across every line.
func (c *Cart) TotalUSD() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, line := range c.lines {
		total += line.Product.PriceUSD * float64(line.Quantity)
	}
	return total
}

// TotalBS converts the USD total at the given rate.
func (c *Cart) TotalBS(exchangeRate float64) float64 {
	return c.TotalUSD() * exchangeRate
}

// Lines returns a copy of the cart's lines.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// OrderItems converts the cart into the order creation payload.
func (c *Cart) OrderItems() []NewOrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]NewOrderItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, NewOrderItem{
			ProductID:         line.Product.ID,
			ProductName:       line.Product.Name,
			Quantity:          line.Quantity,
			UnitPriceUSD:      line.Product.PriceUSD,
			CustomDescription: line.CustomDescription,
		})
	}
	return items
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// CartStore holds one cart per seller.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*Cart)}
}

// Cart returns the seller's cart, creating it on first use.
func (s *CartStore) Cart(sellerID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sellerID]
	if !ok {
		cart = NewCart()
		s.carts[sellerID] = cart
	}
	return cart
}
