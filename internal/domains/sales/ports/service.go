package ports

import (
	"context"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
)

// Service exposes sale use cases to adapters.
type Service interface {
	CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error)
	CancelSale(ctx context.Context, input types.CancelSaleInput) (*types.SaleProjection, error)
	GetSaleByID(ctx context.Context, input types.SaleIdentifier) (*types.SaleProjection, error)
	ListSales(ctx context.Context) ([]*types.SaleProjection, error)
}
