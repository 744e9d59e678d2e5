package service

import (
	"context"
	"fmt"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CalendarService struct {
	expenses *ExpenseService
	logger   *zap.Logger
}

func NewCalendarService(expenses *ExpenseService, logger *zap.Logger) *CalendarService {
	return &CalendarService{
		expenses: expenses,
		logger:   logger,
	}
}

// Month lists the days of month that have at least one transaction, with the
// income, expense and net totals of each.
func (s *CalendarService) Month(ctx context.Context, userID uuid.UUID, month string) (*dto.CalendarMonthResponse, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records, err := s.expenses.Range(ctx, userID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]*models.Expense)
	for _, e := range records {
		key := e.Date.Format(models.DateLayout)
		byDay[key] = append(byDay[key], e)
	}

	resp := &dto.CalendarMonthResponse{
		Month:       m.String(),
		MarkedDates: []string{},
		Days:        []dto.DayTotalsResponse{},
	}
	for _, day := range m.Days() {
		key := day.Format(models.DateLayout)
		dayRecords, ok := byDay[key]
		if !ok {
			continue
		}
		resp.MarkedDates = append(resp.MarkedDates, key)
		resp.Days = append(resp.Days, totalsFor(key, dayRecords))
	}
	return resp, nil
}

// Day returns one day's transactions with their totals.
func (s *CalendarService) Day(ctx context.Context, userID uuid.UUID, date string) (*dto.CalendarDayResponse, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records, err := s.expenses.Range(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}

	return &dto.CalendarDayResponse{
		DayTotalsResponse: totalsFor(day.Format(models.DateLayout), records),
		Transactions:      toExpenseResponses(records),
	}, nil
}

func totalsFor(date string, records []*models.Expense) dto.DayTotalsResponse {
	income, expense := dayTotals(records)
	return dto.DayTotalsResponse{
		Date:    date,
		Income:  money(income),
		Expense: money(expense),
		Net:     money(income.Sub(expense)),
	}
}

