package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalType string

const (
	GoalTypeExpenseBudget GoalType = "expense_budget"
	GoalTypeHabitTarget   GoalType = "habit_target"
)

func (t GoalType) Valid() bool {
	return t == GoalTypeExpenseBudget || t == GoalTypeHabitTarget
}

type Goal struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Title       string          `db:"title"`
	Type        GoalType        `db:"type"`
	TargetValue decimal.Decimal `db:"target_value"`
	CategoryID  *uuid.UUID      `db:"category_id"`
	HabitID     *uuid.UUID      `db:"habit_id"`
	Month       string          `db:"month"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`

	// Joined display fields.
	CategoryName *string `db:"-"`
	CategoryIcon *string `db:"-"`
	HabitTitle   *string `db:"-"`
	HabitIcon    *string `db:"-"`
}

type GoalProgress struct {
	Goal               *Goal
	Current            decimal.Decimal
	ProgressPercentage decimal.Decimal
	IsMet              bool
}
