package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
)

func TestFingerprintCreateSale_Deterministic(t *testing.T) {
	input := types.CreateSaleInput{
		Items: []types.SaleItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}

	first, err := FingerprintCreateSale(input)
	require.NoError(t, err)
	second, err := FingerprintCreateSale(input)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 64)
}

func TestFingerprintCreateSale_IgnoresIdempotencyKey(t *testing.T) {
	base := types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 1, Quantity: 2}},
	}
	keyed := base
	keyed.IdempotencyKey = "retry-1"

	baseHash, err := FingerprintCreateSale(base)
	require.NoError(t, err)
	keyedHash, err := FingerprintCreateSale(keyed)
	require.NoError(t, err)
	require.Equal(t, baseHash, keyedHash)
}

func TestFingerprintCreateSale_OrderSignificant(t *testing.T) {
	forward, err := FingerprintCreateSale(types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	})
	require.NoError(t, err)
	reversed, err := FingerprintCreateSale(types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotEqual(t, forward, reversed)
}

func TestFingerprintCreateSale_DateChangesHash(t *testing.T) {
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	withDate, err := FingerprintCreateSale(types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 1, Quantity: 2}},
		Date:  &date,
	})
	require.NoError(t, err)
	withoutDate, err := FingerprintCreateSale(types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotEqual(t, withDate, withoutDate)
}
