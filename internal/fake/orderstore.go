package fake

import (
	"context"
	"sort"
	"sync"

	"github.com/microshop/checkout-service/internal/checkout"
)

var _ checkout.OrderStore = (*OrderStore)(nil)

// OrderStore keeps placed orders in memory. It backs demo mode, where the
// service runs without a database.
type OrderStore struct {
	mu     sync.RWMutex
	orders []checkout.OrderResult
}

// NewOrderStore returns an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

// Save implements checkout.OrderStore.
func (s *OrderStore) Save(_ context.Context, order *checkout.OrderResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, *order)
	return nil
}

// FindByUser implements checkout.OrderStore. Orders come back most recent
// first, matching the SQL-backed store.
func (s *OrderStore) FindByUser(_ context.Context, userID string) ([]checkout.OrderResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]checkout.OrderResult, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
