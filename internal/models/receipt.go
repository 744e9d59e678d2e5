package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReceiptStatus string

const (
	ReceiptStatusUploaded  ReceiptStatus = "uploaded"
	ReceiptStatusExtracted ReceiptStatus = "extracted"
	ReceiptStatusFailed    ReceiptStatus = "failed"
	ReceiptStatusCommitted ReceiptStatus = "committed"
)

type Receipt struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	ImageURL       string          `db:"image_url"`
	StoragePath    string          `db:"storage_path"`
	Status         ReceiptStatus   `db:"status"`
	ExtractionJSON json.RawMessage `db:"extraction_json"`
	ErrorMessage   *string         `db:"error_message"`
	UploadedAt     time.Time       `db:"uploaded_at"`
}

type ReceiptItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ReceiptExtraction is what the vision model read off a receipt.
type ReceiptExtraction struct {
	Merchant      string          `json:"merchant"`
	Date          string          `json:"date"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Items         []ReceiptItem   `json:"items,omitempty"`
	Confidence    float64         `json:"confidence"`
}
