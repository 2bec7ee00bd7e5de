package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogdomain "github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
	"github.com/DewinU/backend-DSI/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sales in PostgreSQL using GORM. The sale header, its
// lines, and the stock movements share one transaction: either every write
// lands or none does. Stock debits are conditional updates guarded by the
// remaining quantity, so concurrent sales against the same product serialize
// at the row and the losing transaction rolls back instead of overselling.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&saleRecord{}, &saleLineRecord{})
	}
	return repo
}

type saleRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Reference string          `gorm:"column:reference;type:varchar(64);uniqueIndex"`
	Date      time.Time       `gorm:"column:date;index"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	Cancelled bool            `gorm:"column:cancelled;index"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (saleRecord) TableName() string { return "sales" }

type saleLineRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	SaleID    int64           `gorm:"column:sale_id;index"`
	ProductID int64           `gorm:"column:product_id;index"`
	Quantity  int32           `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (saleLineRecord) TableName() string { return "sale_lines" }

// productRow reads the catalog-owned products table for stock guards and
// projection population. Schema ownership stays with the catalog adapter.
type productRow struct {
	ID          int64           `gorm:"column:id"`
	Name        string          `gorm:"column:name"`
	SKU         string          `gorm:"column:sku"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price"`
	StockOnHand int32           `gorm:"column:stock_on_hand"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
}

func (productRow) TableName() string { return "products" }

// CreateSale persists the header and lines and debits stock in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	record := saleRecord{
		Reference: sale.Reference,
		Date:      sale.Date,
		Total:     sale.Total,
		Cancelled: false,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for _, line := range sale.Lines {
			lineRecord := saleLineRecord{
				SaleID:    record.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPriceAtSale,
			}
			if err := tx.Create(&lineRecord).Error; err != nil {
				return err
			}
			if err := debitStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// CancelSale flips the cancelled flag via compare-and-set and restores each
// line's recorded quantity, all in one transaction. The guard makes a
// concurrent double-cancel lose cleanly instead of double-restoring.
func (r *Repository) CancelSale(ctx context.Context, id int64) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&saleRecord{}).
			Where("id = ? AND cancelled = ?", id, false).
			Updates(map[string]any{"cancelled": true, "updated_at": gorm.Expr("NOW()")})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existing saleRecord
			if err := tx.First(&existing, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ports.ErrNotFound
				}
				return err
			}
			return domain.ErrAlreadyCancelled
		}
		var lines []saleLineRecord
		if err := tx.Find(&lines, "sale_id = ?", id).Error; err != nil {
			return err
		}
		for _, line := range lines {
			if err := restoreStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID loads a sale with its lines and each line's product.
func (r *Repository) GetByID(ctx context.Context, id int64) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.project(ctx, record)
}

// List returns all sales with populated lines.
func (r *Repository) List(ctx context.Context) ([]*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []saleRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*types.SaleProjection, 0, len(records))
	for _, record := range records {
		p, err := r.project(ctx, record)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (r *Repository) project(ctx context.Context, record saleRecord) (*types.SaleProjection, error) {
	var lineRecords []saleLineRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&lineRecords, "sale_id = ?", record.ID).Error; err != nil {
		return nil, err
	}
	sale := record.toDomain()
	lines := make([]types.SaleLineProjection, 0, len(lineRecords))
	for _, lr := range lineRecords {
		line := lr.toDomain()
		sale.Lines = append(sale.Lines, line)
		var row productRow
		var product *catalogdomain.Product
		err := r.db.WithContext(ctx).First(&row, "id = ?", lr.ProductID).Error
		switch {
		case err == nil:
			product = row.toDomain()
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Product deleted after the sale; the line still carries the snapshot.
		default:
			return nil, err
		}
		lines = append(lines, types.SaleLineProjection{Line: line, Product: product})
	}
	meta := projection.Metadata{CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt}
	return types.NewSaleProjection(sale, lines, meta), nil
}

// debitStock applies a decrement-if-sufficient update. Zero rows affected
// means the product is missing or short on stock; the caller's transaction
// rolls back either way.
func debitStock(tx *gorm.DB, productID int64, quantity int32) error {
	result := tx.Model(&productRow{}).
		Where("id = ? AND stock_on_hand >= ?", productID, quantity).
		Updates(map[string]any{
			"stock_on_hand": gorm.Expr("stock_on_hand - ?", quantity),
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var row productRow
		if err := tx.First(&row, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalogports.ErrNotFound
			}
			return err
		}
		return &domain.InsufficientStockError{
			ProductID:   row.ID,
			ProductName: row.Name,
			Available:   row.StockOnHand,
			Requested:   quantity,
		}
	}
	return nil
}

func restoreStock(tx *gorm.DB, productID int64, quantity int32) error {
	result := tx.Model(&productRow{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock_on_hand": gorm.Expr("stock_on_hand + ?", quantity),
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalogports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sale repository not configured")
	}
	return nil
}

func (r saleRecord) toDomain() *domain.Sale {
	return &domain.Sale{
		ID:        r.ID,
		Reference: r.Reference,
		Date:      r.Date,
		Total:     r.Total,
		Cancelled: r.Cancelled,
	}
}

func (r saleLineRecord) toDomain() domain.SaleLine {
	return domain.SaleLine{
		ID:              r.ID,
		SaleID:          r.SaleID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		UnitPriceAtSale: r.UnitPrice,
	}
}

func (r productRow) toDomain() *catalogdomain.Product {
	return &catalogdomain.Product{
		ID:          r.ID,
		Name:        r.Name,
		SKU:         r.SKU,
		UnitPrice:   r.UnitPrice,
		StockOnHand: r.StockOnHand,
		Tags:        append([]string{}, r.Tags...),
	}
}
