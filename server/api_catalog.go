package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	productmapper "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
)

// CatalogAPI wires HTTP transport with the catalog bounded context service.
type CatalogAPI struct {
	service catalogports.Service
}

// NewCatalogAPI creates a CatalogAPI backed by the provided service.
func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Post /v2/products
// Add a new product to the catalog
func (api *CatalogAPI) AddProduct(c *gin.Context) {
	var payload productmapper.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := productmapper.ToDomainProduct(payload)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.AddProduct(c.Request.Context(), product)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromDomainProduct(created))
}

// Put /v2/products
// Update an existing product
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	var payload productmapper.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := productmapper.ToDomainProduct(payload)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromDomainProduct(updated))
}

// Get /v2/products/:productId
// Find product by ID
func (api *CatalogAPI) GetProductById(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromDomainProduct(product))
}

// Delete /v2/products/:productId
// Remove a product from the catalog
func (api *CatalogAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v2/products
// List all catalog products
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromDomainProductList(products))
}
