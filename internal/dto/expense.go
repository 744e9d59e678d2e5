package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Merchant      *string         `json:"merchant" validate:"omitempty,max=120"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"number"`
	Currency      *string         `json:"currency" validate:"omitempty,currency"`
	CategoryID    *string         `json:"category_id" validate:"omitempty,uuid"`
	PaymentMethod *string         `json:"payment_method" validate:"omitempty,payment_method"`
	Notes         *string         `json:"notes" validate:"omitempty,max=500"`
}

// UpdateExpenseRequest is a partial update; nil fields are left unchanged.
type UpdateExpenseRequest struct {
	Merchant      *string          `json:"merchant" validate:"omitempty,max=120"`
	Date          *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Amount        *decimal.Decimal `json:"amount" swaggertype:"number"`
	Currency      *string          `json:"currency" validate:"omitempty,currency"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,payment_method"`
	Notes         *string          `json:"notes" validate:"omitempty,max=500"`
}

type ExpenseResponse struct {
	ID              string            `json:"id"`
	ReceiptID       *string           `json:"receipt_id,omitempty"`
	Merchant        *string           `json:"merchant"`
	Date            string            `json:"date"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	CategoryID      *string           `json:"category_id"`
	Category        *CategoryResponse `json:"category,omitempty"`
	IsIncome        bool              `json:"is_income"`
	PaymentMethod   *string           `json:"payment_method"`
	Notes           *string           `json:"notes"`
	IsAIExtracted   bool              `json:"is_ai_extracted"`
	ConfidenceScore *float64          `json:"confidence_score,omitempty"`
	Items           json.RawMessage   `json:"items,omitempty" swaggertype:"array,object"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Color    string  `json:"color"`
}

type ExpenseStatsResponse struct {
	Total      float64                 `json:"total"`
	ByCategory []CategoryTotalResponse `json:"by_category"`
}
