// Package money implements exact decimal money arithmetic on
// (currency, units, nanos) triples. Nanos are billionths of a unit, so no
// floating point is involved anywhere and results are reproducible
// bit-for-bit.
package money

import (
	"github.com/go-faster/errors"
)

const (
	nanosMod = 1_000_000_000
	nanosMin = -999_999_999
	nanosMax = 999_999_999
)

// Sentinel errors for arithmetic precondition violations. Both indicate
// programmer or data errors and are never worth retrying.
var (
	ErrInvalidValue        = errors.New("one of the specified money values is invalid")
	ErrMismatchingCurrency = errors.New("mismatching currency codes")
)

// Money is an amount of a single currency. Units and Nanos always agree in
// sign (zero is compatible with either), and |Nanos| never reaches one whole
// unit. Money values are immutable: operations return new values.
type Money struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// New returns a Money value without validating it. Use IsValid to check
// amounts that originate outside the process.
func New(currency string, units int64, nanos int32) Money {
	return Money{CurrencyCode: currency, Units: units, Nanos: nanos}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{CurrencyCode: currency}
}

// IsValid reports whether m obeys the sign-agreement and nanos-range
// invariants.
func (m Money) IsValid() bool {
	return m.signMatches() && m.Nanos >= nanosMin && m.Nanos <= nanosMax
}

func (m Money) signMatches() bool {
	return m.Nanos == 0 || m.Units == 0 || (m.Nanos < 0) == (m.Units < 0)
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool {
	return m.Units == 0 && m.Nanos == 0
}

// Sum adds two values of the same currency.
//
// Units and nanos are summed independently and then reconciled: when the raw
// sums already agree in sign (zero is compatible with either), whole units are
// carried out of the nanos part (truncating division, remainder keeps the
// dividend's sign). When they truly disagree, one whole unit is borrowed
// across so both parts end up sign-compatible. The second branch is what keeps
// results correct when one operand's fractional part pushes the combined sign
// across zero.
func Sum(l, r Money) (Money, error) {
	if !l.IsValid() || !r.IsValid() {
		return Money{}, ErrInvalidValue
	}
	if l.CurrencyCode != r.CurrencyCode {
		return Money{}, errors.Wrapf(ErrMismatchingCurrency, "%s vs %s", l.CurrencyCode, r.CurrencyCode)
	}

	units := l.Units + r.Units
	nanos := int64(l.Nanos) + int64(r.Nanos)

	if (units >= 0 && nanos >= 0) || (units <= 0 && nanos <= 0) {
		units += nanos / nanosMod
		nanos %= nanosMod
	} else {
		if units > 0 {
			units--
			nanos += nanosMod
		} else {
			units++
			nanos -= nanosMod
		}
	}

	return Money{CurrencyCode: l.CurrencyCode, Units: units, Nanos: int32(nanos)}, nil
}

// MultiplyByInt multiplies m by a non-negative integer. It is defined as
// folding Sum over n copies of m: n of 0 yields the zero amount in m's
// currency. The loop below is the definition, not an approximation, so
// results match repeated addition exactly for every valid input.
func MultiplyByInt(m Money, n uint32) (Money, error) {
	if !m.IsValid() {
		return Money{}, ErrInvalidValue
	}
	if n == 0 {
		return Zero(m.CurrencyCode), nil
	}

	out := m
	for i := uint32(1); i < n; i++ {
		var err error
		out, err = Sum(out, m)
		if err != nil {
			return Money{}, err
		}
	}
	return out, nil
}
