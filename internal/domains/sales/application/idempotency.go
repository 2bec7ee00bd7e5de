package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
)

type normalizedCreateSaleInput struct {
	Items []normalizedSaleItem `json:"items"`
	Date  *time.Time           `json:"date"`
}

type normalizedSaleItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// FingerprintCreateSale builds a deterministic hash of the create-sale payload
// (excluding the idempotency key). Item order is significant: a reordered
// basket is a different request.
func FingerprintCreateSale(input types.CreateSaleInput) (string, error) {
	normalized := normalizedCreateSaleInput{
		Items: make([]normalizedSaleItem, 0, len(input.Items)),
		Date:  input.Date,
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedSaleItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
