package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/events"
	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type ExpenseService struct {
	expenseRepo ExpenseRepository
	userRepo    UserRepository
	categories  *CategoryService
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewExpenseService(
	expenseRepo ExpenseRepository,
	userRepo UserRepository,
	categories *CategoryService,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		categories:  categories,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]dto.ExpenseResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	expenses, err := s.expenseRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return toExpenseResponses(expenses), nil
}

// Range loads every record with start <= date <= end, newest first.
func (s *ExpenseService) Range(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Expense, error) {
	expenses, err := s.expenseRepo.List(ctx, userID, models.ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}

	currency, err := s.currencyFor(ctx, userID, req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	e := &models.Expense{
		ID:            uuid.New(),
		UserID:        userID,
		Merchant:      nonEmpty(req.Merchant),
		Date:          date,
		Amount:        req.Amount.Round(2),
		Currency:      currency,
		PaymentMethod: nonEmpty(req.PaymentMethod),
		Notes:         nonEmpty(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.attachCategory(ctx, userID, e, req.CategoryID); err != nil {
		return nil, err
	}

	if err := s.Save(ctx, e, "manual"); err != nil {
		return nil, err
	}

	resp := toExpenseResponse(e)
	return &resp, nil
}

// Save persists a new record and emits its side effects. source labels where
// the record came from ("manual" or "receipt").
func (s *ExpenseService) Save(ctx context.Context, e *models.Expense, source string) error {
	if e.Merchant != nil {
		m := sanitizeUTF8(*e.Merchant)
		e.Merchant = &m
	}
	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	s.metrics.ExpenseCreated(source)
	s.publisher.Publish(ctx, events.New(events.ExpenseCreated, e.UserID, map[string]any{
		"expense_id": e.ID.String(),
		"amount":     e.Amount.String(),
		"date":       e.Date.Format(models.DateLayout),
		"is_income":  e.IsIncome(),
		"source":     source,
	}))

	s.logger.Info("Expense created",
		zap.String("expense_id", e.ID.String()),
		zap.String("user_id", e.UserID.String()),
		zap.String("source", source),
	)
	return nil
}

// Update applies the non-nil fields of req to a record the user owns.
func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Merchant != nil {
		e.Merchant = nonEmpty(req.Merchant)
	}
	if req.Date != nil {
		date, err := models.ParseDate(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		e.Date = date
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
		}
		e.Amount = req.Amount.Round(2)
	}
	if req.Currency != nil {
		e.Currency = strings.ToUpper(*req.Currency)
	}
	if req.CategoryID != nil {
		e.CategoryID, e.Category = nil, nil
		if err := s.attachCategory(ctx, userID, e, req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != nil {
		e.PaymentMethod = nonEmpty(req.PaymentMethod)
	}
	if req.Notes != nil {
		e.Notes = nonEmpty(req.Notes)
	}
	e.UpdatedAt = time.Now()

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.publisher.Publish(ctx, events.New(events.ExpenseUpdated, userID, map[string]any{
		"expense_id": e.ID.String(),
	}))

	resp := toExpenseResponse(e)
	return &resp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.expenseRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.New(events.ExpenseDeleted, userID, map[string]any{
		"expense_id": id.String(),
	}))
	return nil
}

// Stats totals spending between start and end, both inclusive.
func (s *ExpenseService) Stats(ctx context.Context, userID uuid.UUID, start, end time.Time) (*models.ExpenseStats, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidInput)
	}
	expenses, err := s.Range(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return aggregateSpending(expenses), nil
}

func (s *ExpenseService) StatsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.ExpenseStatsResponse, error) {
	stats, err := s.Stats(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.ExpenseStatsResponse{
		Total:      money(stats.Total),
		ByCategory: toCategoryTotals(stats.ByCategory),
	}, nil
}

func (s *ExpenseService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	e, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *ExpenseService) attachCategory(ctx context.Context, userID uuid.UUID, e *models.Expense, raw *string) error {
	categoryID, err := parseOptionalUUID(raw)
	if err != nil || categoryID == nil {
		return err
	}
	c, err := s.categories.Resolve(ctx, userID, *categoryID)
	if err != nil {
		return err
	}
	e.CategoryID = &c.ID
	e.Category = c
	return nil
}

// currencyFor picks the explicit currency or falls back to the profile's.
func (s *ExpenseService) currencyFor(ctx context.Context, userID uuid.UUID, explicit *string) (string, error) {
	if explicit != nil && *explicit != "" {
		return strings.ToUpper(*explicit), nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	if user.Currency == "" {
		return models.DefaultCurrency, nil
	}
	return user.Currency, nil
}
