package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/microshop/checkout-service/internal/money"
)

// Service drives the order-placement saga end to end. Each PlaceOrder call is
// an independent sequential pipeline; the service itself holds no mutable
// state, so concurrent calls need no coordination here — all sharing lives in
// the collaborators.
type Service struct {
	cart     CartProvider
	catalog  Catalog
	shipping ShippingProvider
	payment  PaymentProvider
	orders   OrderStore
	tracer   trace.Tracer
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	cart CartProvider,
	catalog Catalog,
	shipping ShippingProvider,
	payment PaymentProvider,
	orders OrderStore,
) *Service {
	return &Service{
		cart:     cart,
		catalog:  catalog,
		shipping: shipping,
		payment:  payment,
		orders:   orders,
		tracer:   otel.Tracer("checkout"),
	}
}

// PlaceOrder executes the saga in fixed order: fetch cart, price items, quote
// shipping, charge, ship, clear cart, persist. Any failure before the charge
// aborts with no side effect of record. A shipping failure after the charge is
// surfaced as a hard error: the customer is billed, no shipment exists, and no
// order is persisted. Clear-cart and persistence failures after shipping are
// absorbed (logged) — the order is committed to the customer by then.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	order, err := s.placeOrder(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return order, err
}

func (s *Service) placeOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error) {
	lg := zctx.From(ctx).With(zap.String("user_id", req.UserID))

	cartItems, err := s.cart.Fetch(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch cart")
	}
	lg.Info("Cart fetched", zap.Int("items", len(cartItems)))

	orderItems, err := s.priceItems(ctx, cartItems)
	if err != nil {
		return nil, err
	}

	shippingCost, err := s.shipping.Quote(ctx, req.Address, cartItems)
	if err != nil {
		return nil, errors.Wrap(err, "shipping quote")
	}

	total, err := orderTotal(req.UserCurrency, shippingCost, orderItems)
	if err != nil {
		return nil, err
	}

	txID, err := s.payment.Charge(ctx, total, req.CreditCard)
	if err != nil {
		return nil, errors.Wrap(err, "charge card")
	}
	lg.Info("Payment went through", zap.String("transaction_id", txID))

	trackingID, err := s.shipping.Ship(ctx, req.Address, cartItems)
	if err != nil {
		// The charge already succeeded; make the billed-but-unshipped state
		// explicit to the caller instead of hiding it behind a generic error.
		return nil, errors.Wrapf(err, "ship order after successful charge %s", txID)
	}

	if err := s.cart.Clear(ctx, req.UserID); err != nil {
		lg.Warn("Failed to clear cart", zap.Error(err))
	}

	order := &OrderResult{
		OrderID:            uuid.New().String(),
		ShippingTrackingID: trackingID,
		ShippingCost:       shippingCost,
		ShippingAddress:    req.Address,
		Items:              orderItems,
		UserID:             req.UserID,
		Email:              req.Email,
		TotalCost:          total,
		CreatedAt:          time.Now().UTC(),
		UserCurrency:       req.UserCurrency,
	}

	if err := s.orders.Save(ctx, order); err != nil {
		// No rollback of payment or shipment: the order is placed from the
		// customer's perspective even if the durable record write fails.
		lg.Error("Failed to persist order", zap.String("order_id", order.OrderID), zap.Error(err))
	}

	// Email service removed upstream; keep the confirmation trace.
	lg.Info("Order placed",
		zap.String("order_id", order.OrderID),
		zap.String("tracking_id", trackingID),
		zap.String("confirmation_email", req.Email),
	)

	return order, nil
}

// GetOrderHistory returns the user's completed orders, most recent first.
func (s *Service) GetOrderHistory(ctx context.Context, userID string) ([]OrderResult, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	return orders, nil
}

// priceItems resolves each cart line's unit price. Output order matches input
// order. A missing product aborts the whole run.
func (s *Service) priceItems(ctx context.Context, items []CartItem) ([]OrderItem, error) {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
		}
		price, err := s.catalog.UnitPrice(ctx, item.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "price product %s", item.ProductID)
		}
		out = append(out, OrderItem{Item: item, Cost: price})
	}
	return out, nil
}

// orderTotal folds the shipping cost and every line's cost×quantity into a
// zero amount of the requested currency. Every addition goes through
// money.Sum, so a catalog price in a different currency fails the run instead
// of being converted silently.
func orderTotal(currency string, shippingCost money.Money, items []OrderItem) (money.Money, error) {
	total, err := money.Sum(money.Zero(currency), shippingCost)
	if err != nil {
		return money.Money{}, errors.Wrap(err, "add shipping cost")
	}
	for _, it := range items {
		cost, err := money.MultiplyByInt(it.Cost, uint32(it.Item.Quantity))
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "cost of product %s", it.Item.ProductID)
		}
		total, err = money.Sum(total, cost)
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "add cost of product %s", it.Item.ProductID)
		}
	}
	return total, nil
}
