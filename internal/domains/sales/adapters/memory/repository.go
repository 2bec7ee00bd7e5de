package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
	"github.com/DewinU/backend-DSI/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// ProductStore is the catalog surface the in-memory sales repository needs:
// reads for projections plus atomic stock movements.
type ProductStore interface {
	catalogports.Repository
	catalogports.StockAdjuster
}

// Repository is an in-memory sale persistence adapter. Sale writes are
// serialized under the repository lock; stock movements go through the
// product store's atomic adjusters, with compensation on partial failure so
// the all-or-nothing contract holds.
type Repository struct {
	mu       sync.RWMutex
	sales    map[int64]*domain.Sale
	products ProductStore
	nextID   int64
}

func NewRepository(products ProductStore) *Repository {
	return &Repository{
		sales:    map[int64]*domain.Sale{},
		products: products,
	}
}

func (r *Repository) CreateSale(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error) {
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	clone := cloneSale(sale)
	if err := clone.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	debited := make([]domain.SaleLine, 0, len(clone.Lines))
	for _, line := range clone.Lines {
		if _, err := r.products.DebitStock(ctx, line.ProductID, line.Quantity); err != nil {
			r.compensate(ctx, debited)
			return nil, err
		}
		debited = append(debited, line)
	}

	r.nextID++
	clone.ID = r.nextID
	for i := range clone.Lines {
		clone.Lines[i].ID = int64(i + 1)
		clone.Lines[i].SaleID = clone.ID
	}
	r.sales[clone.ID] = clone
	return r.projectLocked(ctx, clone)
}

func (r *Repository) CancelSale(ctx context.Context, id int64) (*types.SaleProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sale, ok := r.sales[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if sale.Cancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	restored := make([]domain.SaleLine, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		if _, err := r.products.RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
			for _, done := range restored {
				_, _ = r.products.DebitStock(ctx, done.ProductID, done.Quantity)
			}
			return nil, err
		}
		restored = append(restored, line)
	}
	sale.Cancelled = true
	return r.projectLocked(ctx, sale)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*types.SaleProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.projectLocked(ctx, sale)
}

func (r *Repository) List(ctx context.Context) ([]*types.SaleProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.sales))
	for id := range r.sales {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	list := make([]*types.SaleProjection, 0, len(ids))
	for _, id := range ids {
		p, err := r.projectLocked(ctx, r.sales[id])
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

// compensate undoes stock debits applied before a failed line.
func (r *Repository) compensate(ctx context.Context, debited []domain.SaleLine) {
	for _, line := range debited {
		_, _ = r.products.RestoreStock(ctx, line.ProductID, line.Quantity)
	}
}

func (r *Repository) projectLocked(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error) {
	clone := cloneSale(sale)
	lines := make([]types.SaleLineProjection, 0, len(clone.Lines))
	for _, line := range clone.Lines {
		product, err := r.products.GetByID(ctx, line.ProductID)
		if err != nil {
			// A product deleted after the sale leaves the line readable with
			// its recorded price; only the product reference goes missing.
			if !errors.Is(err, catalogports.ErrNotFound) {
				return nil, err
			}
			product = nil
		}
		lines = append(lines, types.SaleLineProjection{Line: line, Product: product})
	}
	return types.NewSaleProjection(clone, lines, projection.Metadata{}), nil
}

func cloneSale(sale *domain.Sale) *domain.Sale {
	clone := *sale
	clone.Lines = append([]domain.SaleLine{}, sale.Lines...)
	return &clone
}
