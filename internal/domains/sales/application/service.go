package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

// Service orchestrates the sales bounded context use cases. Validation is
// completed against current inventory before any mutation; the repository then
// re-checks stock atomically inside its unit of work, so a concurrent sale
// hitting the same product cannot oversell.
type Service struct {
	repo         ports.Repository
	products     catalogports.Repository
	idempotency  ports.IdempotencyStore
	now          func() time.Time
	newReference func() string
}

type Option func(*Service)

// WithIdempotencyStore enables replay of retried sale creations.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReferenceGenerator overrides sale reference generation.
func WithReferenceGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newReference = gen
		}
	}
}

// NewService wires the sales service with its collaborators.
func NewService(repo ports.Repository, products catalogports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		products:     products,
		now:          time.Now,
		newReference: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSale validates the basket, snapshots current prices, and persists the
// sale with its stock debits as one unit of work. With an idempotency key the
// key is reserved before the first write, so a concurrent duplicate replays or
// conflicts instead of debiting stock a second time.
func (s *Service) CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error) {
	if err := validateCreateSale(input); err != nil {
		return nil, err
	}
	if s.idempotency == nil || input.IdempotencyKey == "" {
		return s.createSale(ctx, input)
	}

	hash, err := FingerprintCreateSale(input)
	if err != nil {
		return nil, err
	}
	claimed, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         input.IdempotencyKey,
		RequestHash: hash,
	})
	if err != nil {
		return nil, err
	}
	if claimed.SaleID != 0 {
		return s.repo.GetByID(ctx, claimed.SaleID)
	}

	projection, err := s.createSale(ctx, input)
	if err != nil {
		_ = s.idempotency.Release(ctx, input.IdempotencyKey)
		return nil, err
	}
	if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         input.IdempotencyKey,
		RequestHash: hash,
		SaleID:      projection.Sale.ID,
	}); err != nil {
		return nil, err
	}
	return projection, nil
}

func (s *Service) createSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error) {
	// Validation phase: every item is checked against current inventory
	// before the first write.
	lines := make([]domain.SaleLine, 0, len(input.Items))
	for _, item := range input.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.CanFulfill(item.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockOnHand,
				Requested:   item.Quantity,
			}
		}
		lines = append(lines, domain.SaleLine{
			ProductID:       product.ID,
			Quantity:        item.Quantity,
			UnitPriceAtSale: product.UnitPrice,
		})
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}
	sale, err := domain.NewSale(s.newReference(), date, lines)
	if err != nil {
		return nil, mapError(err)
	}

	return s.repo.CreateSale(ctx, sale)
}

// CancelSale restores each line's recorded quantity and marks the sale
// cancelled, exactly once.
func (s *Service) CancelSale(ctx context.Context, input types.CancelSaleInput) (*types.SaleProjection, error) {
	if input.ID <= 0 {
		return nil, mapError(domain.ErrInvalidSaleID)
	}
	return s.repo.CancelSale(ctx, input.ID)
}

// GetSaleByID loads a sale with its lines and products.
func (s *Service) GetSaleByID(ctx context.Context, input types.SaleIdentifier) (*types.SaleProjection, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// ListSales returns all sales with populated lines.
func (s *Service) ListSales(ctx context.Context) ([]*types.SaleProjection, error) {
	return s.repo.List(ctx)
}

func validateCreateSale(input types.CreateSaleInput) error {
	if len(input.Items) == 0 {
		return mapError(domain.ErrEmptyItems)
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return mapError(domain.ErrInvalidProductID)
		}
		if item.Quantity <= 0 {
			return mapError(domain.ErrInvalidQuantity)
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
