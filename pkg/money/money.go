package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Fractional digit limits used across documents, ledger and valuation.
const (
	AmountScale   int32 = 2
	PriceScale    int32 = 2
	QuantityScale int32 = 4
	RateScale     int32 = 4
	CostScale     int32 = 4
)

var (
	ErrInvalidNumber = errors.New("invalid decimal number")
	ErrExcessScale   = errors.New("too many fractional digits")
)

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Hundred = decimal.NewFromInt(100)
)

// Parse reads a plain decimal string. It never goes through float64.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// HasScale reports whether d carries at most scale fractional digits.
// Trailing zeros do not count: 1.500 has scale 1.
func HasScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// CheckScale rejects values with more fractional digits than allowed.
// Values are never truncated to fit.
func CheckScale(d decimal.Decimal, scale int32) error {
	if !HasScale(d, scale) {
		return fmt.Errorf("%w: %s allows at most %d", ErrExcessScale, d.String(), scale)
	}
	return nil
}

// Round is round-half-up (away from zero) to scale.
func Round(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.Round(scale)
}

// Floor rounds toward negative infinity at scale.
func Floor(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.RoundFloor(scale)
}

// LineNet is round2(quantity x unitPrice).
func LineNet(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice), AmountScale)
}

// LineVat is round2(net x rate).
func LineVat(net, rate decimal.Decimal) decimal.Decimal {
	return Round(net.Mul(rate), AmountScale)
}

// Sum adds values exactly.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// InRange reports lo <= d <= hi.
func InRange(d, lo, hi decimal.Decimal) bool {
	return d.GreaterThanOrEqual(lo) && d.LessThanOrEqual(hi)
}
