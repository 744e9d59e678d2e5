package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/events"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type GoalService struct {
	goalRepo   GoalRepository
	habitRepo  HabitRepository
	categories *CategoryService
	expenses   *ExpenseService
	planner    *PlannerService
	publisher  events.Publisher
	logger     *zap.Logger
}

func NewGoalService(
	goalRepo GoalRepository,
	habitRepo HabitRepository,
	categories *CategoryService,
	expenses *ExpenseService,
	planner *PlannerService,
	publisher events.Publisher,
	logger *zap.Logger,
) *GoalService {
	return &GoalService{
		goalRepo:   goalRepo,
		habitRepo:  habitRepo,
		categories: categories,
		expenses:   expenses,
		planner:    planner,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *GoalService) List(ctx context.Context, userID uuid.UUID, month string) ([]dto.GoalResponse, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	goals, err := s.goalRepo.ListByMonth(ctx, userID, m.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	out := make([]dto.GoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	return out, nil
}

func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateGoalRequest) (*dto.GoalResponse, error) {
	goalType := models.GoalType(req.Type)
	if !goalType.Valid() {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrInvalidInput, req.Type)
	}
	if !req.TargetValue.IsPositive() {
		return nil, fmt.Errorf("%w: target_value must be greater than zero", ErrInvalidInput)
	}
	m, err := models.ParseMonth(req.Month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now()
	g := &models.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Type:        goalType,
		TargetValue: req.TargetValue.Round(2),
		Month:       m.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return nil, err
	}
	if categoryID != nil {
		c, err := s.categories.Resolve(ctx, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		g.CategoryID = &c.ID
		g.CategoryName, g.CategoryIcon = &c.Name, c.Icon
	}

	habitID, err := parseOptionalUUID(req.HabitID)
	if err != nil {
		return nil, err
	}
	if goalType == models.GoalTypeHabitTarget && habitID == nil {
		return nil, fmt.Errorf("%w: habit_target goals need a habit_id", ErrInvalidInput)
	}
	if habitID != nil {
		h, err := s.habitRepo.GetByID(ctx, *habitID)
		if err != nil || h.UserID != userID {
			return nil, fmt.Errorf("%w: unknown habit", ErrInvalidInput)
		}
		g.HabitID = &h.ID
		g.HabitTitle, g.HabitIcon = &h.Title, h.Icon
	}

	if err := s.goalRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.publisher.Publish(ctx, events.New(events.GoalCreated, userID, map[string]any{
		"goal_id": g.ID.String(),
		"type":    string(g.Type),
		"month":   g.Month,
	}))

	resp := toGoalResponse(g)
	return &resp, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.goalRepo.Delete(ctx, userID, id)
}

// Progress measures every goal of month against the month's records.
func (s *GoalService) Progress(ctx context.Context, userID uuid.UUID, month string) ([]dto.GoalProgressResponse, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	goals, err := s.goalRepo.ListByMonth(ctx, userID, m.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	out := make([]dto.GoalProgressResponse, 0, len(goals))
	if len(goals) == 0 {
		return out, nil
	}

	expenses, err := s.expenses.Range(ctx, userID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}
	logs, err := s.planner.Logs(ctx, userID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}

	for _, g := range goals {
		p := computeProgress(g, expenses, logs)
		out = append(out, dto.GoalProgressResponse{
			GoalResponse:       toGoalResponse(g),
			CurrentValue:       money(p.Current),
			ProgressPercentage: money(p.ProgressPercentage),
			IsMet:              p.IsMet,
		})
	}
	return out, nil
}

// computeProgress derives a goal's current value from the month's records.
// A budget sums spending, restricted to its category when it has one; a habit
// target counts the distinct days its habit was completed.
func computeProgress(g *models.Goal, expenses []*models.Expense, logs []*models.HabitLog) *models.GoalProgress {
	current := decimal.Zero

	switch g.Type {
	case models.GoalTypeExpenseBudget:
		seen := make(map[uuid.UUID]struct{}, len(expenses))
		for _, e := range expenses {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			if g.CategoryID != nil {
				if e.CategoryID == nil || *e.CategoryID != *g.CategoryID {
					continue
				}
			} else if e.IsIncome() {
				continue
			}
			current = current.Add(e.Amount)
		}

	case models.GoalTypeHabitTarget:
		if g.HabitID != nil {
			days := make(map[string]struct{})
			for _, l := range logs {
				if l.HabitID == *g.HabitID && l.IsCompleted {
					days[l.LoggedDate.Format(models.DateLayout)] = struct{}{}
				}
			}
			current = decimal.NewFromInt(int64(len(days)))
		}
	}

	pct := decimal.Zero
	if g.TargetValue.IsPositive() {
		pct = decimal.Min(current.Div(g.TargetValue).Mul(hundred), hundred)
	}

	isMet := current.GreaterThanOrEqual(g.TargetValue)
	if g.Type == models.GoalTypeExpenseBudget {
		isMet = current.LessThanOrEqual(g.TargetValue)
	}

	return &models.GoalProgress{
		Goal:               g,
		Current:            current,
		ProgressPercentage: pct.Round(2),
		IsMet:              isMet,
	}
}
