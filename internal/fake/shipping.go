package fake

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.ShippingProvider = (*Shipping)(nil)

// Shipping quotes a flat rate and records shipments in memory.
type Shipping struct {
	mu        sync.Mutex
	shipments map[string]checkout.Address
}

// NewShipping returns a shipping service with no recorded shipments.
func NewShipping() *Shipping {
	return &Shipping{shipments: make(map[string]checkout.Address)}
}

// Quote returns a flat $8.99 regardless of destination or contents.
func (s *Shipping) Quote(_ context.Context, _ checkout.Address, _ []checkout.CartItem) (money.Money, error) {
	return money.New("USD", 8, 990_000_000), nil
}

// Ship records a shipment and returns a fresh tracking id.
func (s *Shipping) Ship(_ context.Context, addr checkout.Address, _ []checkout.CartItem) (string, error) {
	trackingID := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[trackingID] = addr
	return trackingID, nil
}

// Shipped reports whether a shipment with the given tracking id exists.
func (s *Shipping) Shipped(trackingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.shipments[trackingID]
	return ok
}
