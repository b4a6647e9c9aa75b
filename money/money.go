// Package money provides fixed-point arithmetic for invoice amounts.
// All amounts are held as integer minor units (cents); decimals only
// appear at the parsing and formatting boundaries.
package money

import (
	"errors"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in minor currency units.
type Cents int64

var (
	ErrNegativePrice     = errors.New("unit price must not be negative")
	ErrBadQuantity       = errors.New("quantity must be at least 1")
	ErrBadTaxRate        = errors.New("tax rate must be between 0 and 100")
	ErrSubCentPrecision  = errors.New("amount has sub-cent precision")
	ErrAmountOutOfBounds = errors.New("amount out of bounds")
)

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a major-unit decimal (e.g. "19.99") to Cents.
// Values with more than two fractional digits are rejected rather than
// rounded, so the stored amount is always exactly what was entered.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, ErrNegativePrice
	}
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, ErrSubCentPrecision
	}
	if !shifted.BigInt().IsInt64() {
		return 0, ErrAmountOutOfBounds
	}
	return Cents(shifted.IntPart()), nil
}

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Shift(-2)
}

// Format renders the amount for display in the given ISO currency code.
func (c Cents) Format(currency string) string {
	return gomoney.New(int64(c), currency).Display()
}

// Line is one billable row: quantity times unit price.
type Line struct {
	Quantity  int
	UnitPrice Cents
}

// LineTotal computes quantity * unitPrice, rejecting non-positive
// quantities and negative prices.
func LineTotal(quantity int, unitPrice Cents) (Cents, error) {
	if quantity < 1 {
		return 0, ErrBadQuantity
	}
	if unitPrice < 0 {
		return 0, ErrNegativePrice
	}
	return Cents(int64(quantity) * int64(unitPrice)), nil
}

// Totals holds the three derived invoice amounts. They are always
// computed together; none is independently settable.
type Totals struct {
	Amount      Cents
	TaxAmount   Cents
	TotalAmount Cents
}

// ComputeTotals sums the line totals and applies the tax rate (a
// percentage in [0,100]). The tax amount is rounded half-up to the
// nearest cent; the same inputs always produce the same outputs.
func ComputeTotals(lines []Line, taxRatePercent decimal.Decimal) (Totals, error) {
	if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(hundred) {
		return Totals{}, ErrBadTaxRate
	}
	var amount Cents
	for i, l := range lines {
		lt, err := LineTotal(l.Quantity, l.UnitPrice)
		if err != nil {
			return Totals{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		amount += lt
	}
	// decimal.Round rounds half away from zero, which for non-negative
	// amounts is exactly round-half-up.
	tax := decimal.NewFromInt(int64(amount)).
		Mul(taxRatePercent).
		Div(hundred).
		Round(0)
	taxAmount := Cents(tax.IntPart())
	return Totals{
		Amount:      amount,
		TaxAmount:   taxAmount,
		TotalAmount: amount + taxAmount,
	}, nil
}
