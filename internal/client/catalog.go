package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.Catalog = (*Catalog)(nil)

// Catalog talks to the product catalog collaborator.
type Catalog struct {
	addr string
	hc   *http.Client
}

// NewCatalog returns a catalog client for the given host:port.
func NewCatalog(addr string, hc *http.Client) *Catalog {
	return &Catalog{addr: addr, hc: hc}
}

// productResponse carries only the fields the saga needs; the collaborator
// also returns name, description, picture and categories.
type productResponse struct {
	ID       string      `json:"id"`
	PriceUsd money.Money `json:"priceUsd"`
}

// UnitPrice looks up a product and returns its unit price. A 404 from the
// collaborator becomes a ProductNotFoundError, which aborts the saga before
// any charge is attempted.
func (c *Catalog) UnitPrice(ctx context.Context, productID string) (money.Money, error) {
	url := fmt.Sprintf("http://%s/api/products/%s", c.addr, productID)

	var p productResponse
	status, err := getJSON(ctx, c.hc, url, &p)
	if err != nil {
		return money.Money{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return money.Money{}, &checkout.ProductNotFoundError{ProductID: productID}
	case status != http.StatusOK:
		return money.Money{}, errors.Errorf("catalog: get product failed: status %d", status)
	}
	return p.PriceUsd, nil
}
