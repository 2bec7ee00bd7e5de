package ports

import (
	"context"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
)

// WorkflowOrchestrator runs the sale settlement flow, either inline or through
// a durable execution engine.
type WorkflowOrchestrator interface {
	CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error)
}
