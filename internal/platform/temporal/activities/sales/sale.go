package sales

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	salestypes "github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

// PersistSaleActivityName persists a sale aggregate and debits stock.
const PersistSaleActivityName = "sales.activities.PersistSale"

// Activities groups activities that operate on the sales bounded context.
type Activities struct {
	service salesports.Service
}

// NewActivities wires the sales service into the Temporal activities bundle.
func NewActivities(service salesports.Service) *Activities {
	return &Activities{service: service}
}

// PersistSale stores a new sale aggregate and returns its projection. The
// service-level idempotency store makes retried attempts replay the first
// result instead of debiting stock again.
func (a *Activities) PersistSale(ctx context.Context, input salestypes.CreateSaleInput) (*salestypes.SaleProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("sale persist activity not initialized")
		return nil, errors.New("sale persist activity not initialized")
	}
	logger.Info("PersistSale activity started", "items", len(input.Items))
	projection, err := a.service.CreateSale(ctx, input)
	if err != nil {
		logger.Error("PersistSale activity failed", "error", err)
		return nil, err
	}
	if projection != nil && projection.Sale != nil {
		logger.Info("PersistSale activity completed", "saleId", projection.Sale.ID)
	} else {
		logger.Info("PersistSale activity completed")
	}
	return projection, nil
}
