package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.PaymentProvider = (*Payment)(nil)

// Payment talks to the payment collaborator. The collaborator owns card
// validation and charge idempotency; this client is a thin pass-through.
type Payment struct {
	addr string
	hc   *http.Client
}

// NewPayment returns a payment client for the given host:port.
func NewPayment(addr string, hc *http.Client) *Payment {
	return &Payment{addr: addr, hc: hc}
}

type chargeRequest struct {
	Amount     money.Money             `json:"amount"`
	CreditCard checkout.CreditCardInfo `json:"creditCard"`
}

type chargeResponse struct {
	TransactionID string `json:"transactionId"`
}

// Charge submits a charge for the given amount. A returned transaction id is
// the saga's point of no return; any failure maps to ErrPaymentFailed.
func (c *Payment) Charge(ctx context.Context, amount money.Money, card checkout.CreditCardInfo) (string, error) {
	url := fmt.Sprintf("http://%s/api/payment/charge", c.addr)

	var charge chargeResponse
	status, body, err := postJSON(ctx, c.hc, url, chargeRequest{Amount: amount, CreditCard: card}, &charge)
	if err != nil {
		// Keep the transport error in the chain so timeouts stay inspectable.
		return "", fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
	}
	if status != http.StatusOK {
		return "", errors.Wrapf(checkout.ErrPaymentFailed, "status %d: %s", status, body)
	}
	if charge.TransactionID == "" {
		return "", errors.Wrap(checkout.ErrPaymentFailed, "no transaction id returned")
	}
	return charge.TransactionID, nil
}
