//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/DewinU/backend-DSI/test/pact"

	catalogmemory "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/DewinU/backend-DSI/internal/domains/catalog/application"
	catalogdomain "github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	salesmemory "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/memory"
	salesobs "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/observability"
	salesworkflows "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/workflows"
	salesapp "github.com/DewinU/backend-DSI/internal/domains/sales/application"
	posserver "github.com/DewinU/backend-DSI/server"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPosProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedProduct(t, pacttest.ExampleProductStock)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateLowStock: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedProduct(t, pacttest.LowStockQuantity)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	catalog *catalogmemory.Repository
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	catalogRepo := catalogmemory.NewRepository()
	salesRepo := salesmemory.NewRepository(catalogRepo)
	idempotencyStore := salesmemory.NewIdempotencyStore()

	catalogService := catalogobs.New(catalogapp.NewService(catalogRepo))
	salesService := salesobs.New(salesapp.NewService(salesRepo, catalogRepo, salesapp.WithIdempotencyStore(idempotencyStore)))
	workflows := salesworkflows.NewInlineSaleWorkflows(salesService)

	handlers := posserver.ApiHandleFunctions{
		SalesAPI:   posserver.NewSalesAPI(salesService, workflows),
		CatalogAPI: posserver.NewCatalogAPI(catalogService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = posserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		catalog: catalogRepo,
		server:  server,
	}
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	products, err := a.catalog.List(context.Background())
	require.NoError(t, err)
	for _, product := range products {
		_ = a.catalog.Delete(context.Background(), product.ID)
	}
}

func (a *contractProviderApp) seedProduct(t testing.TB, stock int32) {
	t.Helper()
	product, err := catalogdomain.NewProduct(
		pacttest.ExistingProductID,
		pacttest.ExampleProductName,
		pacttest.ExampleProductSKU,
		decimal.RequireFromString(pacttest.ExampleProductPrice),
		stock,
		nil,
	)
	require.NoError(t, err)
	_, err = a.catalog.Save(context.Background(), product)
	require.NoError(t, err)
}
