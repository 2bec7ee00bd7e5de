package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyItems       = errors.New("a sale requires at least one item")
	ErrInvalidProductID = errors.New("item product id must be greater than zero")
	ErrInvalidQuantity  = errors.New("item quantity must be greater than zero")
	ErrInvalidSaleID    = errors.New("sale id must be greater than zero")
	ErrAlreadyCancelled = errors.New("sale is already cancelled")
)

// InsufficientStockError reports a stock shortfall for a single item,
// carrying the quantities needed to explain the rejection to the caller.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

// SaleLine is an immutable (product, quantity, snapshotted price) tuple
// belonging to exactly one sale. UnitPriceAtSale is captured at creation time
// so historical sales are immune to future price changes.
type SaleLine struct {
	ID              int64
	SaleID          int64
	ProductID       int64
	Quantity        int32
	UnitPriceAtSale decimal.Decimal
}

// Subtotal returns quantity times the snapshotted unit price.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPriceAtSale.Mul(decimal.NewFromInt32(l.Quantity))
}

// Validate enforces line invariants.
func (l SaleLine) Validate() error {
	if l.ProductID <= 0 {
		return ErrInvalidProductID
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Sale aggregates one or more line items, a grand total, and a terminal
// cancellation flag. The only transition is Active -> Cancelled.
type Sale struct {
	ID        int64
	Reference string
	Date      time.Time
	Total     decimal.Decimal
	Cancelled bool
	Lines     []SaleLine
}

// NewSale validates the lines and constructs a sale whose total is the sum of
// line subtotals.
func NewSale(reference string, date time.Time, lines []SaleLine) (*Sale, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}
	total := decimal.Zero
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		total = total.Add(line.Subtotal())
	}
	return &Sale{
		Reference: reference,
		Date:      date,
		Total:     total,
		Cancelled: false,
		Lines:     append([]SaleLine{}, lines...),
	}, nil
}

// Cancel transitions the sale into the terminal cancelled state.
func (s *Sale) Cancel() error {
	if s.Cancelled {
		return ErrAlreadyCancelled
	}
	s.Cancelled = true
	return nil
}

// Validate checks aggregate-level invariants, including that the stored total
// matches the sum of line subtotals.
func (s *Sale) Validate() error {
	if len(s.Lines) == 0 {
		return ErrEmptyItems
	}
	total := decimal.Zero
	for _, line := range s.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
		total = total.Add(line.Subtotal())
	}
	if !s.Total.Equal(total) {
		return fmt.Errorf("sale total %s does not match line subtotals %s", s.Total, total)
	}
	return nil
}
