package dto

import "github.com/shopspring/decimal"

type ReceiptItemResponse struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type ReceiptExtractionResponse struct {
	Merchant      string                `json:"merchant"`
	Date          string                `json:"date"`
	Total         float64               `json:"total"`
	Currency      string                `json:"currency"`
	Category      string                `json:"category,omitempty"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Items         []ReceiptItemResponse `json:"items"`
	Confidence    float64               `json:"confidence"`
}

type ReceiptScanResponse struct {
	ReceiptID           string                     `json:"receipt_id"`
	ImageURL            string                     `json:"image_url"`
	Status              string                     `json:"status"`
	Extraction          *ReceiptExtractionResponse `json:"extraction,omitempty"`
	SuggestedCategoryID *string                    `json:"suggested_category_id,omitempty"`
	Error               string                     `json:"error,omitempty"`
}

// CommitReceiptRequest overrides extracted fields before the expense is saved.
type CommitReceiptRequest struct {
	Merchant      *string          `json:"merchant" validate:"omitempty,max=120"`
	Date          *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Amount        *decimal.Decimal `json:"amount" swaggertype:"number"`
	Currency      *string          `json:"currency" validate:"omitempty,currency"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,payment_method"`
	Notes         *string          `json:"notes" validate:"omitempty,max=500"`
}
