package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route defines the parameters for a single API endpoint.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes is a map of defined API endpoints.
type Routes map[string][]Route

// ApiHandleFunctions groups the API handlers bound to the router.
type ApiHandleFunctions struct {
	SalesAPI   SalesAPI
	CatalogAPI CatalogAPI
}

// NewRouter returns a new gin router with all endpoints attached.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine attaches all endpoints to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, routes := range getRoutes(handleFunctions) {
		for _, route := range routes {
			if route.HandlerFunc == nil {
				route.HandlerFunc = defaultHandleFunc
			}
			switch route.Method {
			case http.MethodGet:
				router.GET(route.Pattern, route.HandlerFunc)
			case http.MethodPost:
				router.POST(route.Pattern, route.HandlerFunc)
			case http.MethodPut:
				router.PUT(route.Pattern, route.HandlerFunc)
			case http.MethodDelete:
				router.DELETE(route.Pattern, route.HandlerFunc)
			}
		}
	}
	return router
}

func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) Routes {
	return Routes{
		"SalesAPI": {
			{
				Name:        "CreateSale",
				Method:      http.MethodPost,
				Pattern:     "/v2/sales",
				HandlerFunc: handleFunctions.SalesAPI.CreateSale,
			},
			{
				Name:        "CancelSale",
				Method:      http.MethodPost,
				Pattern:     "/v2/sales/:saleId/cancel",
				HandlerFunc: handleFunctions.SalesAPI.CancelSale,
			},
			{
				Name:        "GetSaleById",
				Method:      http.MethodGet,
				Pattern:     "/v2/sales/:saleId",
				HandlerFunc: handleFunctions.SalesAPI.GetSaleById,
			},
			{
				Name:        "ListSales",
				Method:      http.MethodGet,
				Pattern:     "/v2/sales",
				HandlerFunc: handleFunctions.SalesAPI.ListSales,
			},
		},
		"CatalogAPI": {
			{
				Name:        "AddProduct",
				Method:      http.MethodPost,
				Pattern:     "/v2/products",
				HandlerFunc: handleFunctions.CatalogAPI.AddProduct,
			},
			{
				Name:        "UpdateProduct",
				Method:      http.MethodPut,
				Pattern:     "/v2/products",
				HandlerFunc: handleFunctions.CatalogAPI.UpdateProduct,
			},
			{
				Name:        "GetProductById",
				Method:      http.MethodGet,
				Pattern:     "/v2/products/:productId",
				HandlerFunc: handleFunctions.CatalogAPI.GetProductById,
			},
			{
				Name:        "DeleteProduct",
				Method:      http.MethodDelete,
				Pattern:     "/v2/products/:productId",
				HandlerFunc: handleFunctions.CatalogAPI.DeleteProduct,
			},
			{
				Name:        "ListProducts",
				Method:      http.MethodGet,
				Pattern:     "/v2/products",
				HandlerFunc: handleFunctions.CatalogAPI.ListProducts,
			},
		},
	}
}
