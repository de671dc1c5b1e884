package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.ShippingProvider = (*Shipping)(nil)

// Shipping talks to the shipping collaborator.
type Shipping struct {
	addr string
	hc   *http.Client
}

// NewShipping returns a shipping client for the given host:port.
func NewShipping(addr string, hc *http.Client) *Shipping {
	return &Shipping{addr: addr, hc: hc}
}

type shippingRequest struct {
	Address checkout.Address    `json:"address"`
	Items   []checkout.CartItem `json:"items"`
}

type quoteResponse struct {
	CostUsd money.Money `json:"costUsd"`
}

type shipResponse struct {
	TrackingID string `json:"trackingId"`
}

// Quote asks the collaborator for a shipping cost estimate. The call has no
// side effects and the saga may repeat it freely.
func (c *Shipping) Quote(ctx context.Context, addr checkout.Address, items []checkout.CartItem) (money.Money, error) {
	url := fmt.Sprintf("http://%s/api/shipping/quote", c.addr)

	var quote quoteResponse
	status, body, err := postJSON(ctx, c.hc, url, shippingRequest{Address: addr, Items: items}, &quote)
	if err != nil {
		return money.Money{}, err
	}
	if status != http.StatusOK {
		return money.Money{}, errors.Errorf("shipping: quote failed: status %d: %s", status, body)
	}
	return quote.CostUsd, nil
}

// Ship creates a shipment and returns its tracking id. This call has a
// durable side effect; the saga only reaches it after a successful charge.
func (c *Shipping) Ship(ctx context.Context, addr checkout.Address, items []checkout.CartItem) (string, error) {
	url := fmt.Sprintf("http://%s/api/shipping/order", c.addr)

	var ship shipResponse
	status, body, err := postJSON(ctx, c.hc, url, shippingRequest{Address: addr, Items: items}, &ship)
	if err != nil {
		// Keep the transport error in the chain so timeouts stay inspectable.
		return "", fmt.Errorf("%w: %w", checkout.ErrShippingFailed, err)
	}
	if status != http.StatusOK {
		return "", errors.Wrapf(checkout.ErrShippingFailed, "status %d: %s", status, body)
	}
	if ship.TrackingID == "" {
		return "", errors.Wrap(checkout.ErrShippingFailed, "no tracking id returned")
	}
	return ship.TrackingID, nil
}
