package mapper

import (
	"github.com/shopspring/decimal"

	catalogdomain "github.com/DewinU/backend-DSI/internal/domains/catalog/domain"
)

// Product represents the transport-layer shape used by the HTTP handlers.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name" binding:"required"`
	SKU         string   `json:"sku"`
	UnitPrice   string   `json:"unitPrice" binding:"required"`
	StockOnHand int32    `json:"stockOnHand"`
	Tags        []string `json:"tags,omitempty"`
}

// ToDomainProduct converts a transport product into the catalog domain model.
func ToDomainProduct(product Product) (*catalogdomain.Product, error) {
	price, err := decimal.NewFromString(product.UnitPrice)
	if err != nil {
		return nil, err
	}
	return catalogdomain.NewProduct(
		product.ID,
		product.Name,
		product.SKU,
		price,
		product.StockOnHand,
		product.Tags,
	)
}

// FromDomainProduct converts a domain product to the transport representation.
func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		UnitPrice:   product.UnitPrice.String(),
		StockOnHand: product.StockOnHand,
		Tags:        product.Tags,
	}
}

// FromDomainProductList maps a slice of products.
func FromDomainProductList(products []*catalogdomain.Product) []Product {
	list := make([]Product, 0, len(products))
	for _, product := range products {
		list = append(list, FromDomainProduct(product))
	}
	return list
}
