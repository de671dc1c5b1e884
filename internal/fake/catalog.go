// Package fake provides in-memory implementations of every collaborator the
// checkout saga depends on, plus an HTTP stack that serves them over the same
// wire contracts the real collaborators use. It backs the demo mode and the
// package tests.
package fake

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.Catalog = (*Catalog)(nil)

// Product is one catalog entry as served over the wire.
type Product struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	PriceUsd money.Money `json:"priceUsd"`
}

// Catalog is a read-only product catalog held in memory.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewCatalog builds a catalog from the given products.
func NewCatalog(products ...Product) *Catalog {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// LoadCatalog reads a JSON product list from path. Files ending in .gz are
// gzip-compressed; everything else is read as-is.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return NewCatalog(products...), nil
}

// DefaultCatalog returns the small demo catalog used when no catalog file is
// configured.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Product{ID: "OLJCESPC7Z", Name: "Sunglasses", PriceUsd: money.New("USD", 19, 990_000_000)},
		Product{ID: "66VCHSJNUP", Name: "Tank Top", PriceUsd: money.New("USD", 18, 990_000_000)},
		Product{ID: "1YMWWN1N4O", Name: "Watch", PriceUsd: money.New("USD", 109, 990_000_000)},
		Product{ID: "L9ECAV7KIM", Name: "Loafers", PriceUsd: money.New("USD", 89, 990_000_000)},
		Product{ID: "2ZYFJ3GM2N", Name: "Hairdryer", PriceUsd: money.New("USD", 24, 990_000_000)},
		Product{ID: "0PUK6V6EV0", Name: "Candle Holder", PriceUsd: money.New("USD", 18, 990_000_000)},
		Product{ID: "LS4PSXUNUM", Name: "Salt & Pepper Shakers", PriceUsd: money.New("USD", 18, 490_000_000)},
		Product{ID: "9SIQT8TOJO", Name: "Bamboo Glass Jar", PriceUsd: money.New("USD", 5, 490_000_000)},
		Product{ID: "6E92ZMYYFZ", Name: "Mug", PriceUsd: money.New("USD", 8, 990_000_000)},
	)
}

// Get returns a product by id.
func (c *Catalog) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// List returns all products in unspecified order.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out
}

// UnitPrice implements checkout.Catalog.
func (c *Catalog) UnitPrice(_ context.Context, productID string) (money.Money, error) {
	p, ok := c.Get(productID)
	if !ok {
		return money.Money{}, &checkout.ProductNotFoundError{ProductID: productID}
	}
	return p.PriceUsd, nil
}
