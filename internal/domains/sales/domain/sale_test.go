package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewSale_ComputesTotalFromLines(t *testing.T) {
	lines := []SaleLine{
		{ProductID: 1, Quantity: 2, UnitPriceAtSale: decimal.RequireFromString("5.00")},
		{ProductID: 2, Quantity: 1, UnitPriceAtSale: decimal.RequireFromString("5.00")},
	}

	sale, err := NewSale("ref-1", time.Now(), lines)

	require.NoError(t, err)
	require.True(t, sale.Total.Equal(decimal.RequireFromString("15.00")), "got total %s", sale.Total)
	require.False(t, sale.Cancelled)
	require.Len(t, sale.Lines, 2)
}

func TestNewSale_EmptyLines(t *testing.T) {
	_, err := NewSale("ref-1", time.Now(), nil)
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestNewSale_RejectsInvalidLine(t *testing.T) {
	_, err := NewSale("ref-1", time.Now(), []SaleLine{
		{ProductID: 0, Quantity: 1, UnitPriceAtSale: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, ErrInvalidProductID)

	_, err = NewSale("ref-1", time.Now(), []SaleLine{
		{ProductID: 1, Quantity: 0, UnitPriceAtSale: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSaleLine_Subtotal(t *testing.T) {
	line := SaleLine{ProductID: 1, Quantity: 3, UnitPriceAtSale: decimal.RequireFromString("2.50")}
	require.True(t, line.Subtotal().Equal(decimal.RequireFromString("7.50")))
}

func TestSale_CancelIsTerminal(t *testing.T) {
	sale, err := NewSale("ref-1", time.Now(), []SaleLine{
		{ProductID: 1, Quantity: 1, UnitPriceAtSale: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	require.NoError(t, sale.Cancel())
	require.True(t, sale.Cancelled)
	require.ErrorIs(t, sale.Cancel(), ErrAlreadyCancelled)
}

func TestSale_ValidateDetectsTotalDrift(t *testing.T) {
	sale, err := NewSale("ref-1", time.Now(), []SaleLine{
		{ProductID: 1, Quantity: 2, UnitPriceAtSale: decimal.RequireFromString("4.00")},
	})
	require.NoError(t, err)
	require.NoError(t, sale.Validate())

	sale.Total = decimal.RequireFromString("9.99")
	require.Error(t, sale.Validate())
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &InsufficientStockError{ProductID: 7, ProductName: "Coffee", Available: 2, Requested: 5}
	require.Contains(t, err.Error(), "Coffee")
	require.Contains(t, err.Error(), "available 2")
	require.Contains(t, err.Error(), "requested 5")
}
