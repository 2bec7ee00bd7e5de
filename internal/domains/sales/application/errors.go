package application

import (
	"errors"
	"fmt"

	"github.com/DewinU/backend-DSI/internal/domains/sales/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant before
	// any mutation happened.
	ErrInvalidInput = errors.New("invalid sale input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyItems) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidSaleID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
