package posserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	salehttpmapper "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/http/mapper"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

// IdempotencyKeyHeader carries the client-supplied replay key for sale creation.
const IdempotencyKeyHeader = "Idempotency-Key"

// SalesAPI wires HTTP transport with the sales bounded context service and workflows.
type SalesAPI struct {
	service   salesports.Service
	workflows salesports.WorkflowOrchestrator
}

// NewSalesAPI creates a SalesAPI backed by the provided service.
func NewSalesAPI(service salesports.Service, workflows salesports.WorkflowOrchestrator) SalesAPI {
	return SalesAPI{service: service, workflows: workflows}
}

// Post /v2/sales
// Create a sale: validate the basket, snapshot prices, debit stock.
func (api *SalesAPI) CreateSale(c *gin.Context) {
	var payload salehttpmapper.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := salehttpmapper.ToCreateSaleInput(payload, c.GetHeader(IdempotencyKeyHeader))
	created, err := api.createSale(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromProjection(created))
}

func (api *SalesAPI) createSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error) {
	if api.workflows != nil {
		return api.workflows.CreateSale(ctx, input)
	}
	return api.service.CreateSale(ctx, input)
}

// Post /v2/sales/:saleId/cancel
// Cancel a sale and restore the recorded line quantities.
func (api *SalesAPI) CancelSale(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	updated, err := api.service.CancelSale(c.Request.Context(), types.CancelSaleInput{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromProjection(updated))
}

// Get /v2/sales/:saleId
// Find sale by ID
func (api *SalesAPI) GetSaleById(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := api.service.GetSaleByID(c.Request.Context(), types.SaleIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromProjection(sale))
}

// Get /v2/sales
// List all sales
func (api *SalesAPI) ListSales(c *gin.Context) {
	sales, err := api.service.ListSales(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromProjectionList(sales))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		respondBadRequest(c, err)
		return 0, false
	}
	return id, true
}
