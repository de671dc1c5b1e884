package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/microshop/checkout-service/internal/checkout"
)

var _ checkout.CartProvider = (*Cart)(nil)

// Cart talks to the cart collaborator.
type Cart struct {
	addr string
	hc   *http.Client
}

// NewCart returns a cart client for the given host:port.
func NewCart(addr string, hc *http.Client) *Cart {
	return &Cart{addr: addr, hc: hc}
}

type cartResponse struct {
	UserID string              `json:"userId"`
	Items  []checkout.CartItem `json:"items"`
}

// Fetch returns the user's current cart items. A missing cart (404 or an
// empty body) is an empty cart, not an error.
func (c *Cart) Fetch(ctx context.Context, userID string) ([]checkout.CartItem, error) {
	url := fmt.Sprintf("http://%s/api/cart/%s", c.addr, userID)

	var cart cartResponse
	status, err := getJSON(ctx, c.hc, url, &cart)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return []checkout.CartItem{}, nil
	case status != http.StatusOK:
		return nil, errors.Errorf("cart: fetch failed: status %d", status)
	}
	if cart.Items == nil {
		return []checkout.CartItem{}, nil
	}
	return cart.Items, nil
}

// Clear empties the user's cart. The saga treats a failure here as
// best-effort; this client still reports it so it can be logged.
func (c *Cart) Clear(ctx context.Context, userID string) error {
	url := fmt.Sprintf("http://%s/api/cart/%s", c.addr, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("cart: clear failed: status %d", resp.StatusCode)
	}
	return nil
}
