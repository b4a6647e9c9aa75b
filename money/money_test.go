package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFromDecimal(t *testing.T) {
	c, err := FromDecimal(dec("19.99"))
	require.NoError(t, err)
	assert.Equal(t, Cents(1999), c)

	c, err = FromDecimal(dec("0"))
	require.NoError(t, err)
	assert.Equal(t, Cents(0), c)

	_, err = FromDecimal(dec("-1.00"))
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = FromDecimal(dec("1.999"))
	assert.ErrorIs(t, err, ErrSubCentPrecision)
}

func TestLineTotal(t *testing.T) {
	lt, err := LineTotal(3, 1999)
	require.NoError(t, err)
	assert.Equal(t, Cents(5997), lt)

	_, err = LineTotal(0, 1999)
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = LineTotal(-2, 1999)
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = LineTotal(1, -5)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestComputeTotals(t *testing.T) {
	lines := []Line{
		{Quantity: 2, UnitPrice: 1250},
		{Quantity: 1, UnitPrice: 500},
	}
	totals, err := ComputeTotals(lines, dec("8"))
	require.NoError(t, err)
	assert.Equal(t, Cents(3000), totals.Amount)
	assert.Equal(t, Cents(240), totals.TaxAmount)
	assert.Equal(t, Cents(3240), totals.TotalAmount)
}

func TestComputeTotalsRoundsHalfUp(t *testing.T) {
	// 3 x $19.99 = $59.97; 7% tax = $4.1979 -> $4.20
	totals, err := ComputeTotals([]Line{{Quantity: 3, UnitPrice: 1999}}, dec("7"))
	require.NoError(t, err)
	assert.Equal(t, Cents(5997), totals.Amount)
	assert.Equal(t, Cents(420), totals.TaxAmount)
	assert.Equal(t, Cents(6417), totals.TotalAmount)

	// $0.50 at 1% = $0.005, rounds up to $0.01.
	totals, err = ComputeTotals([]Line{{Quantity: 1, UnitPrice: 50}}, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, Cents(1), totals.TaxAmount)
}

func TestComputeTotalsDeterministic(t *testing.T) {
	lines := []Line{
		{Quantity: 7, UnitPrice: 333},
		{Quantity: 13, UnitPrice: 999},
		{Quantity: 1, UnitPrice: 1},
	}
	first, err := ComputeTotals(lines, dec("8.25"))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := ComputeTotals(lines, dec("8.25"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeTotalsRejectsBadInput(t *testing.T) {
	_, err := ComputeTotals([]Line{{Quantity: 1, UnitPrice: 100}}, dec("-1"))
	assert.ErrorIs(t, err, ErrBadTaxRate)

	_, err = ComputeTotals([]Line{{Quantity: 1, UnitPrice: 100}}, dec("100.01"))
	assert.ErrorIs(t, err, ErrBadTaxRate)

	_, err = ComputeTotals([]Line{{Quantity: 0, UnitPrice: 100}}, dec("5"))
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$64.17", Cents(6417).Format("USD"))
	assert.Equal(t, "$0.00", Cents(0).Format("USD"))
}
