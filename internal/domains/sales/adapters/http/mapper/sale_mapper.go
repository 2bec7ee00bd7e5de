package mapper

import (
	"time"

	productmapper "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/http/mapper"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
)

// CreateSaleRequest is the wire shape for POST /sales.
type CreateSaleRequest struct {
	Items []SaleItemRequest `json:"items" binding:"required"`
	Date  *time.Time        `json:"date" time_format:"2006-01-02T15:04:05Z07:00"`
}

// SaleItemRequest is one requested (product, quantity) pair.
type SaleItemRequest struct {
	ID       int64 `json:"id"`
	Quantity int32 `json:"quantity"`
}

// ToCreateSaleInput converts the wire request into the application command.
func ToCreateSaleInput(req CreateSaleRequest, idempotencyKey string) types.CreateSaleInput {
	items := make([]types.SaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, types.SaleItemInput{ProductID: item.ID, Quantity: item.Quantity})
	}
	return types.CreateSaleInput{
		Items:          items,
		Date:           req.Date,
		IdempotencyKey: idempotencyKey,
	}
}

// SaleResponse is the wire shape returned for sale operations.
type SaleResponse struct {
	ID        int64              `json:"id"`
	Reference string             `json:"reference"`
	Date      time.Time          `json:"date"`
	Total     string             `json:"total"`
	Cancelled bool               `json:"cancelled"`
	Lines     []SaleLineResponse `json:"lines"`
}

// SaleLineResponse carries a line with its snapshotted price and the product
// as currently stored.
type SaleLineResponse struct {
	ID              int64                  `json:"id"`
	ProductID       int64                  `json:"productId"`
	Quantity        int32                  `json:"quantity"`
	UnitPriceAtSale string                 `json:"unitPriceAtSale"`
	Subtotal        string                 `json:"subtotal"`
	Product         *productmapper.Product `json:"product,omitempty"`
}

// FromProjection converts a sale projection to the transport representation.
func FromProjection(projection *types.SaleProjection) SaleResponse {
	if projection == nil || projection.Sale == nil {
		return SaleResponse{}
	}
	lines := make([]SaleLineResponse, 0, len(projection.Lines))
	for _, lp := range projection.Lines {
		line := SaleLineResponse{
			ID:              lp.Line.ID,
			ProductID:       lp.Line.ProductID,
			Quantity:        lp.Line.Quantity,
			UnitPriceAtSale: lp.Line.UnitPriceAtSale.String(),
			Subtotal:        lp.Line.Subtotal().String(),
		}
		if lp.Product != nil {
			product := productmapper.FromDomainProduct(lp.Product)
			line.Product = &product
		}
		lines = append(lines, line)
	}
	return SaleResponse{
		ID:        projection.Sale.ID,
		Reference: projection.Sale.Reference,
		Date:      projection.Sale.Date,
		Total:     projection.Sale.Total.String(),
		Cancelled: projection.Sale.Cancelled,
		Lines:     lines,
	}
}

// FromProjectionList maps a slice of sale projections.
func FromProjectionList(projections []*types.SaleProjection) []SaleResponse {
	list := make([]SaleResponse, 0, len(projections))
	for _, projection := range projections {
		list = append(list, FromProjection(projection))
	}
	return list
}
