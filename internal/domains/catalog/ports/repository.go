package ports

import (
	"context"
	"errors"

	"github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// Repository persists products.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
}

// StockAdjuster applies atomic stock movements on behalf of a sale unit of
// work. DebitStock fails without mutating when the product is missing or the
// stock is insufficient; RestoreStock always succeeds for an existing product.
type StockAdjuster interface {
	DebitStock(ctx context.Context, productID int64, quantity int32) (*domain.Product, error)
	RestoreStock(ctx context.Context, productID int64, quantity int32) (*domain.Product, error)
}
