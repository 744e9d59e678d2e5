package service

import (
	"sort"

	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// aggregateSpending totals expense-type records by category. Income is left
// out and records without a category land in the "Outros" bucket. The
// breakdown is sorted by amount, largest first.
func aggregateSpending(expenses []*models.Expense) *models.ExpenseStats {
	stats := &models.ExpenseStats{Total: decimal.Zero}
	byName := make(map[string]*models.CategoryTotal)
	seen := make(map[uuid.UUID]struct{}, len(expenses))

	for _, e := range expenses {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.IsIncome() {
			continue
		}

		name, color := models.UncategorizedName, models.UncategorizedColor
		var categoryID *uuid.UUID
		if e.Category != nil {
			name = e.Category.Name
			if e.Category.Color != nil && *e.Category.Color != "" {
				color = *e.Category.Color
			}
			categoryID = e.CategoryID
		}

		bucket, ok := byName[name]
		if !ok {
			bucket = &models.CategoryTotal{CategoryID: categoryID, Category: name, Amount: decimal.Zero, Color: color}
			byName[name] = bucket
			stats.ByCategory = append(stats.ByCategory, bucket)
		}
		bucket.Amount = bucket.Amount.Add(e.Amount)
		stats.Total = stats.Total.Add(e.Amount)
	}

	sort.SliceStable(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Amount.GreaterThan(stats.ByCategory[j].Amount)
	})
	return stats
}

// dayTotals splits a day's records into income and expense sums.
func dayTotals(expenses []*models.Expense) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, e := range expenses {
		if e.IsIncome() {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount)
		}
	}
	return income, expense
}
