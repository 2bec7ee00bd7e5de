package posserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/DewinU/backend-DSI/internal/domains/catalog/application"
)

// Gin folds middleware into handler chains at registration time, so anything
// attached after the routes never runs for them. The engine handed to
// NewRouterWithGinEngine must carry its middleware already.
func TestNewRouterWithGinEngine_RunsPreAttachedMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Header("X-Middleware-Seen", "1")
		c.Next()
	})

	router := NewRouterWithGinEngine(engine, ApiHandleFunctions{
		CatalogAPI: NewCatalogAPI(catalogapp.NewService(catalogmemory.NewRepository())),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v2/products", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Middleware-Seen"))
}
