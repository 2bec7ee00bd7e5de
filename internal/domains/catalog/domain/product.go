package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("product name must not be empty")
	ErrNegativePrice = errors.New("unit price must not be negative")
	ErrNegativeStock = errors.New("stock on hand must not be negative")
)

// Product models a sellable item tracked by the inventory subsystem.
// Stock movements happen only inside the sales unit of work; the catalog
// mutates everything else.
type Product struct {
	ID          int64
	Name        string
	SKU         string
	UnitPrice   decimal.Decimal
	StockOnHand int32
	Tags        []string
}

// NewProduct validates and constructs a new Product aggregate.
func NewProduct(id int64, name, sku string, unitPrice decimal.Decimal, stockOnHand int32, tags []string) (*Product, error) {
	product := &Product{
		ID:          id,
		Name:        name,
		SKU:         sku,
		UnitPrice:   unitPrice,
		StockOnHand: stockOnHand,
		Tags:        append([]string{}, tags...),
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate enforces invariants on the aggregate.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.StockOnHand < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Rename replaces the display name.
func (p *Product) Rename(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// UpdatePrice replaces the current unit price. Historical sales keep their
// snapshotted price and are unaffected.
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.UnitPrice = price
	return nil
}

// ReplaceTags swaps the tag list.
func (p *Product) ReplaceTags(tags []string) {
	p.Tags = append([]string{}, tags...)
}

// CanFulfill reports whether the current stock covers the requested quantity.
func (p *Product) CanFulfill(quantity int32) bool {
	return p.StockOnHand >= quantity
}
