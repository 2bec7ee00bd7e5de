package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	"github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	salesdomain "github.com/DewinU/backend-DSI/internal/domains/sales/domain"
)

var (
	_ ports.Repository    = (*Repository)(nil)
	_ ports.StockAdjuster = (*Repository)(nil)
)

// Repository is an in-memory product persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := cloneProduct(product)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.products[clone.ID] = clone
	return cloneProduct(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneProduct(product), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		list = append(list, cloneProduct(product))
	}
	return list, nil
}

// DebitStock decrements stock only when the remaining quantity covers the
// request, under the repository lock so concurrent sales cannot oversell.
func (r *Repository) DebitStock(_ context.Context, productID int64, quantity int32) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if product.StockOnHand < quantity {
		return nil, &salesdomain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockOnHand,
			Requested:   quantity,
		}
	}
	product.StockOnHand -= quantity
	return cloneProduct(product), nil
}

// RestoreStock increments stock by the recorded sale quantity.
func (r *Repository) RestoreStock(_ context.Context, productID int64, quantity int32) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	product.StockOnHand += quantity
	return cloneProduct(product), nil
}

func cloneProduct(product *domain.Product) *domain.Product {
	clone := *product
	clone.Tags = append([]string{}, product.Tags...)
	return &clone
}
