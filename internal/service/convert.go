package service

import (
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
)

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Currency:  u.Currency,
		Locale:    u.Locale,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toCategoryResponse(c *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		Type:      string(c.Type),
		IsDefault: c.IsDefault,
	}
}

func toExpenseResponse(e *models.Expense) dto.ExpenseResponse {
	resp := dto.ExpenseResponse{
		ID:              e.ID.String(),
		ReceiptID:       uuidString(e.ReceiptID),
		Merchant:        e.Merchant,
		Date:            e.Date.Format(models.DateLayout),
		Amount:          money(e.Amount),
		Currency:        e.Currency,
		CategoryID:      uuidString(e.CategoryID),
		IsIncome:        e.IsIncome(),
		PaymentMethod:   e.PaymentMethod,
		Notes:           e.Notes,
		IsAIExtracted:   e.IsAIExtracted,
		ConfidenceScore: e.ConfidenceScore,
		Items:           e.Items,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
	if e.Category != nil {
		c := toCategoryResponse(e.Category)
		resp.Category = &c
	}
	return resp
}

func toExpenseResponses(expenses []*models.Expense) []dto.ExpenseResponse {
	out := make([]dto.ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toCategoryTotals(totals []*models.CategoryTotal) []dto.CategoryTotalResponse {
	out := make([]dto.CategoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.CategoryTotalResponse{
			Category: t.Category,
			Amount:   money(t.Amount),
			Color:    t.Color,
		})
	}
	return out
}

func toPlannerResponse(p *models.Planner) dto.PlannerResponse {
	return dto.PlannerResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toHabitResponse(h *models.Habit) dto.HabitResponse {
	return dto.HabitResponse{
		ID:                h.ID.String(),
		PlannerID:         h.PlannerID.String(),
		Title:             h.Title,
		Icon:              h.Icon,
		Color:             h.Color,
		Frequency:         string(h.Frequency),
		TargetDaysPerWeek: h.TargetDaysPerWeek,
		CreatedAt:         h.CreatedAt.Format(time.RFC3339),
	}
}

func toHabitLogResponse(l *models.HabitLog) dto.HabitLogResponse {
	return dto.HabitLogResponse{
		ID:          l.ID.String(),
		HabitID:     l.HabitID.String(),
		Date:        l.LoggedDate.Format(models.DateLayout),
		IsCompleted: l.IsCompleted,
	}
}

func toGoalResponse(g *models.Goal) dto.GoalResponse {
	return dto.GoalResponse{
		ID:           g.ID.String(),
		Title:        g.Title,
		Type:         string(g.Type),
		TargetValue:  money(g.TargetValue),
		CategoryID:   uuidString(g.CategoryID),
		HabitID:      uuidString(g.HabitID),
		Month:        g.Month,
		CategoryName: g.CategoryName,
		CategoryIcon: g.CategoryIcon,
		HabitTitle:   g.HabitTitle,
		HabitIcon:    g.HabitIcon,
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
	}
}

func toExtractionResponse(x *models.ReceiptExtraction) *dto.ReceiptExtractionResponse {
	if x == nil {
		return nil
	}
	items := make([]dto.ReceiptItemResponse, 0, len(x.Items))
	for _, it := range x.Items {
		items = append(items, dto.ReceiptItemResponse{
			Name:     it.Name,
			Quantity: it.Quantity.InexactFloat64(),
			Price:    money(it.Price),
		})
	}
	return &dto.ReceiptExtractionResponse{
		Merchant:      x.Merchant,
		Date:          x.Date,
		Total:         money(x.Total),
		Currency:      x.Currency,
		Category:      x.Category,
		PaymentMethod: x.PaymentMethod,
		Items:         items,
		Confidence:    x.Confidence,
	}
}
