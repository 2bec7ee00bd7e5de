package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	salesmemory "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/memory"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *catalogmemory.Repository) {
	t.Helper()
	catalog := catalogmemory.NewRepository()
	repo := salesmemory.NewRepository(catalog)
	return NewService(repo, catalog, opts...), catalog
}

func seedProduct(t *testing.T, catalog *catalogmemory.Repository, name, price string, stock int32) *catalogdomain.Product {
	t.Helper()
	product, err := catalogdomain.NewProduct(0, name, "", decimal.RequireFromString(price), stock, nil)
	require.NoError(t, err)
	saved, err := catalog.Save(context.Background(), product)
	require.NoError(t, err)
	return saved
}

func TestCreateSale_Success(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	proj, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
	})

	require.NoError(t, err)
	require.NotNil(t, proj)
	require.True(t, proj.Sale.Total.Equal(decimal.RequireFromString("15.00")), "got total %s", proj.Sale.Total)
	require.False(t, proj.Sale.Cancelled)
	require.NotEmpty(t, proj.Sale.Reference)
	require.Len(t, proj.Lines, 1)
	require.True(t, proj.Lines[0].Line.UnitPriceAtSale.Equal(decimal.RequireFromString("5.00")))

	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(7), remaining.StockOnHand)
}

func TestCreateSale_EmptyItems(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestCreateSale_InvalidItems(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 0, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidProductID)

	_, err = svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 1, Quantity: 0}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreateSale_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: 99, Quantity: 1}},
	})
	require.Error(t, err)
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 2)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 5}},
	})

	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	require.Equal(t, "Coffee", shortfall.ProductName)
	require.Equal(t, int32(2), shortfall.Available)
	require.Equal(t, int32(5), shortfall.Requested)

	// Nothing was written: stock untouched, no sale recorded.
	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(2), remaining.StockOnHand)
	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Empty(t, sales)
}

func TestCreateSale_MultiItemShortfallDebitsNothing(t *testing.T) {
	svc, catalog := newTestService(t)
	coffee := seedProduct(t, catalog, "Coffee", "5.00", 10)
	tea := seedProduct(t, catalog, "Tea", "3.00", 1)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: tea.ID, Quantity: 4},
		},
	})

	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	require.Equal(t, tea.ID, shortfall.ProductID)

	remainingCoffee, err := catalog.GetByID(context.Background(), coffee.ID)
	require.NoError(t, err)
	require.Equal(t, int32(10), remainingCoffee.StockOnHand)
	remainingTea, err := catalog.GetByID(context.Background(), tea.ID)
	require.NoError(t, err)
	require.Equal(t, int32(1), remainingTea.StockOnHand)
}

func TestCreateSale_SnapshotsPriceAtCreation(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	proj, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// A later price change must not rewrite the recorded sale.
	updated, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.NoError(t, updated.UpdatePrice(decimal.RequireFromString("99.00")))
	_, err = catalog.Save(context.Background(), updated)
	require.NoError(t, err)

	reloaded, err := svc.GetSaleByID(context.Background(), types.SaleIdentifier{ID: proj.Sale.ID})
	require.NoError(t, err)
	require.True(t, reloaded.Sale.Total.Equal(decimal.RequireFromString("10.00")), "got total %s", reloaded.Sale.Total)
	require.True(t, reloaded.Lines[0].Line.UnitPriceAtSale.Equal(decimal.RequireFromString("5.00")))
}

func TestCancelSale_RestoresStock(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	proj, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelSale(context.Background(), types.CancelSaleInput{ID: proj.Sale.ID})
	require.NoError(t, err)
	require.True(t, cancelled.Sale.Cancelled)

	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(10), remaining.StockOnHand)
}

func TestCancelSale_Twice(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	proj, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = svc.CancelSale(context.Background(), types.CancelSaleInput{ID: proj.Sale.ID})
	require.NoError(t, err)

	_, err = svc.CancelSale(context.Background(), types.CancelSaleInput{ID: proj.Sale.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// Stock restored exactly once.
	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(10), remaining.StockOnHand)
}

func TestCancelSale_Unknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CancelSale(context.Background(), types.CancelSaleInput{ID: 42})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCancelSale_InvalidID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CancelSale(context.Background(), types.CancelSaleInput{ID: 0})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidSaleID)
}

func TestCreateSale_IdempotentReplay(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	svc, catalog := newTestService(t, WithIdempotencyStore(store))
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	input := types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		IdempotencyKey: "retry-1",
	}

	first, err := svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.Sale.ID, second.Sale.ID)

	// Stock debited once despite two calls.
	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(7), remaining.StockOnHand)
}

func TestCreateSale_IdempotencyConflict(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	svc, catalog := newTestService(t, WithIdempotencyStore(store))
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		IdempotencyKey: "retry-1",
	})
	require.NoError(t, err)

	_, err = svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		IdempotencyKey: "retry-1",
	})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestCreateSale_ConcurrentSameKeyDebitsOnce(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	svc, catalog := newTestService(t, WithIdempotencyStore(store))
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	input := types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		IdempotencyKey: "retry-1",
	}

	start := make(chan struct{})
	results := make([]*types.SaleProjection, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.CreateSale(context.Background(), input)
		}(i)
	}
	close(start)
	wg.Wait()

	// Whichever interleaving happened, exactly one sale exists and stock was
	// debited once; each caller got that sale or a conflict, never a duplicate.
	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)

	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(7), remaining.StockOnHand)

	for i := range errs {
		if errs[i] != nil {
			require.ErrorIs(t, errs[i], ports.ErrIdempotencyConflict)
			continue
		}
		require.Equal(t, sales[0].Sale.ID, results[i].Sale.ID)
	}
}

func TestCreateSale_InFlightKeyConflicts(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	svc, catalog := newTestService(t, WithIdempotencyStore(store))
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	input := types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		IdempotencyKey: "retry-1",
	}
	hash, err := FingerprintCreateSale(input)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), ports.IdempotencyRecord{
		Key:         input.IdempotencyKey,
		RequestHash: hash,
	})
	require.NoError(t, err)

	_, err = svc.CreateSale(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Empty(t, sales)
	remaining, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(10), remaining.StockOnHand)
}

func TestCreateSale_FailureReleasesKey(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	svc, catalog := newTestService(t, WithIdempotencyStore(store))
	product := seedProduct(t, catalog, "Coffee", "5.00", 2)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 5}},
		IdempotencyKey: "retry-1",
	})
	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)

	// The failed attempt released its reservation, so the key is usable again.
	created, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
		Items:          []types.SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		IdempotencyKey: "retry-1",
	})
	require.NoError(t, err)
	require.NotZero(t, created.Sale.ID)
}

func TestListSales_ReturnsAll(t *testing.T) {
	svc, catalog := newTestService(t)
	product := seedProduct(t, catalog, "Coffee", "5.00", 10)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{
			Items: []types.SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 3)
}
