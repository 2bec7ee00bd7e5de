package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&saleRecord{},
		&saleLineRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	Name        string          `gorm:"column:name"`
	SKU         string          `gorm:"column:sku;type:varchar(64);uniqueIndex"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	StockOnHand int32           `gorm:"column:stock_on_hand"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;index"`
}

func (productRecord) TableName() string { return "products" }

// Sale schema mirrors the sales Postgres adapter.
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
