package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var PaymentMethods = []string{
	"Dinheiro",
	"Multibanco",
	"Cartão de Crédito",
	"Cartão de Débito",
	"MB Way",
	"Transferência",
}

func ValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Expense is a single financial record. Whether it counts as spending or
// income is decided by its category type.
type Expense struct {
	ID                uuid.UUID       `db:"id"`
	UserID            uuid.UUID       `db:"user_id"`
	ReceiptID         *uuid.UUID      `db:"receipt_id"`
	Merchant          *string         `db:"merchant"`
	Date              time.Time       `db:"date"`
	Amount            decimal.Decimal `db:"amount"`
	Currency          string          `db:"currency"`
	CategoryID        *uuid.UUID      `db:"category_id"`
	PaymentMethod     *string         `db:"payment_method"`
	Notes             *string         `db:"notes"`
	IsAIExtracted     bool            `db:"is_ai_extracted"`
	ConfidenceScore   *float64        `db:"confidence_score"`
	RawExtractionJSON json.RawMessage `db:"raw_extraction_json"`
	Items             json.RawMessage `db:"items"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`

	Category *Category `db:"-"`
}

// IsIncome reports whether the record is income. Records without a category
// count as spending.
func (e *Expense) IsIncome() bool {
	return e.Category != nil && e.Category.Type == CategoryTypeIncome
}

type ExpenseFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

type CategoryTotal struct {
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Color      string          `json:"color"`
}

type ExpenseStats struct {
	Total      decimal.Decimal  `json:"total"`
	ByCategory []*CategoryTotal `json:"by_category"`
}
