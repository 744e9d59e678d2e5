package dto

import "github.com/shopspring/decimal"

type CreateGoalRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Type        string          `json:"type" validate:"required,oneof=expense_budget habit_target"`
	TargetValue decimal.Decimal `json:"target_value" swaggertype:"number"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	HabitID     *string         `json:"habit_id" validate:"omitempty,uuid"`
	Month       string          `json:"month" validate:"required,month"`
}

type GoalResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	TargetValue  float64 `json:"target_value"`
	CategoryID   *string `json:"category_id"`
	HabitID      *string `json:"habit_id"`
	Month        string  `json:"month"`
	CategoryName *string `json:"category_name,omitempty"`
	CategoryIcon *string `json:"category_icon,omitempty"`
	HabitTitle   *string `json:"habit_title,omitempty"`
	HabitIcon    *string `json:"habit_icon,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type GoalProgressResponse struct {
	GoalResponse
	CurrentValue       float64 `json:"current_value"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsMet              bool    `json:"is_met"`
}
