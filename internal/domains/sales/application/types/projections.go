package types

import (
	catalogdomain "github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	"github.com/DewinU/backend-DSI/internal/shared/projection"
)

// SaleLineProjection pairs a persisted line with its referenced product as
// read after the write.
type SaleLineProjection struct {
	Line    domain.SaleLine
	Product *catalogdomain.Product
}

// SaleProjection transports a sale aggregate together with its populated
// lines and persistence metadata.
type SaleProjection struct {
	Sale     *domain.Sale
	Lines    []SaleLineProjection
	Metadata projection.Metadata
}

// NewSaleProjection wraps an aggregate with its line projections.
func NewSaleProjection(sale *domain.Sale, lines []SaleLineProjection, meta projection.Metadata) *SaleProjection {
	if sale == nil {
		return nil
	}
	return &SaleProjection{Sale: sale, Lines: lines, Metadata: meta}
}
