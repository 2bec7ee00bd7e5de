package types

import "time"

// SaleItemInput is one requested (product, quantity) pair.
type SaleItemInput struct {
	ProductID int64
	Quantity  int32
}

// CreateSaleInput carries the basket for a new sale. Date is optional and
// defaults to the creation time. IdempotencyKey, when supplied, makes retries
// replay the originally created sale.
type CreateSaleInput struct {
	Items          []SaleItemInput
	Date           *time.Time
	IdempotencyKey string
}

// CancelSaleInput identifies the sale to cancel.
type CancelSaleInput struct {
	ID int64
}

// SaleIdentifier addresses a single sale.
type SaleIdentifier struct {
	ID int64
}
