package models

import "github.com/shopspring/decimal"

type FinancialInsights struct {
	Month          string           `json:"month"`
	TotalSpent     decimal.Decimal  `json:"total_spent"`
	LastMonthTotal decimal.Decimal  `json:"last_month_total"`
	IsSpendingMore bool             `json:"is_spending_more"`
	TopCategory    *CategoryTotal   `json:"top_category"`
	Categories     []*CategoryTotal `json:"categories"`
}

type HabitCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type HabitInsights struct {
	WorstHabit HabitCount   `json:"worst_habit"`
	BestHabit  HabitCount   `json:"best_habit"`
	AllStats   []HabitCount `json:"all_stats"`
}
