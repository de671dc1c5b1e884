package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for collaborator failures.
var (
	// ErrPaymentFailed aborts the saga with no side effect of record: the
	// collaborator either declined the charge or returned no transaction id.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrShippingFailed is the post-charge failure: when it surfaces from
	// PlaceOrder the customer has already been billed and no shipment exists.
	ErrShippingFailed = errors.New("shipping failed")
)

// ProductNotFoundError indicates the catalog has no such product. It aborts
// the saga before any charge is attempted.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}
