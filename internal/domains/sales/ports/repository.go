package ports

import (
	"context"
	"errors"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
)

var ErrNotFound = errors.New("sale not found")

// Repository persists sales. Stock movements are part of the sale unit of
// work: CreateSale debits and CancelSale restores atomically with the sale
// writes, so no partial writes survive a failure.
type Repository interface {
	// CreateSale stores the header and lines and debits stock for every line
	// in one unit of work. A shortfall or missing product detected at write
	// time aborts the whole sale. Returns the stored sale populated with its
	// lines and products.
	CreateSale(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error)
	// CancelSale flips the cancelled flag exactly once and restores each
	// line's recorded quantity in the same unit of work. Returns
	// domain.ErrAlreadyCancelled when the flag was already set and
	// ErrNotFound when the sale does not exist.
	CancelSale(ctx context.Context, id int64) (*types.SaleProjection, error)
	GetByID(ctx context.Context, id int64) (*types.SaleProjection, error)
	List(ctx context.Context) ([]*types.SaleProjection, error)
}
