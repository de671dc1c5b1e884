package fake

import (
	"context"
	"sync"

	"github.com/microshop/checkout-service/internal/checkout"
)

var _ checkout.CartProvider = (*Cart)(nil)

// Cart is an in-memory cart service keyed by user id.
type Cart struct {
	mu    sync.Mutex
	carts map[string][]checkout.CartItem
}

// NewCart returns an empty cart service.
func NewCart() *Cart {
	return &Cart{carts: make(map[string][]checkout.CartItem)}
}

// Add puts an item into the user's cart, merging quantities when the product
// is already present.
func (c *Cart) Add(userID string, item checkout.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.carts[userID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return
		}
	}
	c.carts[userID] = append(items, item)
}

// Fetch implements checkout.CartProvider.
func (c *Cart) Fetch(_ context.Context, userID string) ([]checkout.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.carts[userID]
	out := make([]checkout.CartItem, len(items))
	copy(out, items)
	return out, nil
}

// Clear implements checkout.CartProvider.
func (c *Cart) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, userID)
	return nil
}
