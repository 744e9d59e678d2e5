package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

func (t CategoryType) Valid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

type Category struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	UserID    *uuid.UUID   `db:"user_id" json:"user_id"`
	Name      string       `db:"name" json:"name"`
	Icon      *string      `db:"icon" json:"icon"`
	Color     *string      `db:"color" json:"color"`
	Type      CategoryType `db:"type" json:"type"`
	IsDefault bool         `db:"is_default" json:"is_default"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Fallback bucket for uncategorised spending.
const (
	UncategorizedName  = "Outros"
	UncategorizedColor = "#707070"
)

// DefaultCategory describes a seeded, shared category.
type DefaultCategory struct {
	Name  string
	Icon  string
	Color string
	Type  CategoryType
}

var DefaultCategories = []DefaultCategory{
	{Name: "Alimentação", Icon: "🍔", Color: "#D4A574", Type: CategoryTypeExpense},
	{Name: "Transporte", Icon: "🚗", Color: "#4A5A6A", Type: CategoryTypeExpense},
	{Name: "Casa", Icon: "🏠", Color: "#5A6A7A", Type: CategoryTypeExpense},
	{Name: "Saúde", Icon: "💊", Color: "#6A7A8A", Type: CategoryTypeExpense},
	{Name: "Lazer", Icon: "🎮", Color: "#3A4A5A", Type: CategoryTypeExpense},
	{Name: "Ginásio", Icon: "💪", Color: "#6A7A8A", Type: CategoryTypeExpense},
	{Name: "Combustível", Icon: "⛽", Color: "#4A5A6A", Type: CategoryTypeExpense},
	{Name: "Compras", Icon: "🛍️", Color: "#5A6A7A", Type: CategoryTypeExpense},
	{Name: "Educação", Icon: "📚", Color: "#6A7A8A", Type: CategoryTypeExpense},
	{Name: "Outros", Icon: "📌", Color: "#707070", Type: CategoryTypeExpense},
	{Name: "Salário", Icon: "💶", Color: "#4CAF50", Type: CategoryTypeIncome},
	{Name: "Outros rendimentos", Icon: "💰", Color: "#66BB6A", Type: CategoryTypeIncome},
}
