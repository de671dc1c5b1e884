// Package checkout contains the order-placement domain: the saga that turns a
// shopping cart into a placed order, the value types it moves around, and the
// collaborator ports it depends on.
package checkout

import (
	"context"
	"time"

	"github.com/microshop/checkout-service/internal/money"
)

// CartItem is a single line of a user's cart. Owned by the cart collaborator;
// the saga holds a read-only copy for the duration of one run.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

// OrderItem is a cart line with its resolved unit cost. Immutable once
// attached to an order.
type OrderItem struct {
	Item CartItem    `json:"item"`
	Cost money.Money `json:"cost"`
}

// Address is a shipping destination, passed through unchanged to the shipping
// collaborator and persisted with the order.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	ZipCode       int32  `json:"zipCode"`
}

// CreditCardInfo carries card details for the charge call only. It is never
// persisted and never logged.
type CreditCardInfo struct {
	Number          string `json:"creditCardNumber"`
	CVV             int32  `json:"creditCardCvv"`
	ExpirationYear  int32  `json:"creditCardExpirationYear"`
	ExpirationMonth int32  `json:"creditCardExpirationMonth"`
}

// PlaceOrderRequest holds the input for one saga run.
type PlaceOrderRequest struct {
	UserID       string         `json:"userId"`
	UserCurrency string         `json:"userCurrency"`
	Address      Address        `json:"address"`
	Email        string         `json:"email"`
	CreditCard   CreditCardInfo `json:"creditCard"`
}

// OrderResult is the immutable record of a successfully placed order. It is
// created exactly once per saga run, written once to the order store, and
// never updated.
type OrderResult struct {
	OrderID            string      `json:"orderId"`
	ShippingTrackingID string      `json:"shippingTrackingId"`
	ShippingCost       money.Money `json:"shippingCost"`
	ShippingAddress    Address     `json:"shippingAddress"`
	Items              []OrderItem `json:"items"`
	UserID             string      `json:"userId"`
	Email              string      `json:"email"`
	TotalCost          money.Money `json:"totalCost"`
	CreatedAt          time.Time   `json:"createdAt"`
	UserCurrency       string      `json:"userCurrency"`
}

// CartProvider is the cart collaborator. Fetch returns the user's current
// items (empty when the collaborator has no cart for the user). Clear is
// best-effort from the saga's point of view.
type CartProvider interface {
	Fetch(ctx context.Context, userID string) ([]CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// Catalog resolves a product's unit price. Implementations return a
// ProductNotFoundError when the product does not exist.
type Catalog interface {
	UnitPrice(ctx context.Context, productID string) (money.Money, error)
}

// ShippingProvider quotes and creates shipments. Quote has no side effects
// and may be called repeatedly; Ship creates a durable shipment record and
// must only be called once payment has succeeded.
type ShippingProvider interface {
	Quote(ctx context.Context, addr Address, items []CartItem) (money.Money, error)
	Ship(ctx context.Context, addr Address, items []CartItem) (trackingID string, err error)
}

// PaymentProvider submits a charge for the order total. A returned
// transaction id means the customer has been billed.
type PaymentProvider interface {
	Charge(ctx context.Context, amount money.Money, card CreditCardInfo) (transactionID string, err error)
}

// OrderStore is the durable, append-mostly store of completed orders.
// FindByUser returns orders most recent first.
type OrderStore interface {
	Save(ctx context.Context, order *OrderResult) error
	FindByUser(ctx context.Context, userID string) ([]OrderResult, error)
}
