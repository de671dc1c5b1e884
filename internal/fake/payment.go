package fake

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

var _ checkout.PaymentProvider = (*Payment)(nil)

// Transaction is one recorded charge.
type Transaction struct {
	ID     string
	Amount money.Money
}

// Payment accepts any non-expired card and records charges in memory. No card
// data is kept beyond the duration of the call.
type Payment struct {
	now func() time.Time

	mu      sync.Mutex
	charges []Transaction
}

// NewPayment returns a payment service using the real clock.
func NewPayment() *Payment {
	return &Payment{now: time.Now}
}

// Charge validates the card and amount, then records and acknowledges the
// charge with a fresh transaction id.
func (p *Payment) Charge(_ context.Context, amount money.Money, card checkout.CreditCardInfo) (string, error) {
	if !amount.IsValid() {
		return "", errors.Wrap(checkout.ErrPaymentFailed, "invalid amount")
	}
	if card.Number == "" {
		return "", errors.Wrap(checkout.ErrPaymentFailed, "missing card number")
	}
	if p.expired(card) {
		return "", errors.Wrapf(checkout.ErrPaymentFailed, "card expired %d/%d", card.ExpirationMonth, card.ExpirationYear)
	}

	tx := Transaction{ID: uuid.New().String(), Amount: amount}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.charges = append(p.charges, tx)
	return tx.ID, nil
}

// expired reports whether the card's expiration month has passed. A card is
// valid through the last day of its expiration month.
func (p *Payment) expired(card checkout.CreditCardInfo) bool {
	now := p.now().UTC()
	y, m := int32(now.Year()), int32(now.Month())
	return card.ExpirationYear < y || (card.ExpirationYear == y && card.ExpirationMonth < m)
}

// Charges returns a copy of all recorded charges.
func (p *Payment) Charges() []Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Transaction, len(p.charges))
	copy(out, p.charges)
	return out
}
