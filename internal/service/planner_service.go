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

const defaultTargetDaysPerWeek int32 = 7

type PlannerService struct {
	plannerRepo PlannerRepository
	habitRepo   HabitRepository
	logRepo     HabitLogRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewPlannerService(
	plannerRepo PlannerRepository,
	habitRepo HabitRepository,
	logRepo HabitLogRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		plannerRepo: plannerRepo,
		habitRepo:   habitRepo,
		logRepo:     logRepo,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// ListPlanners returns the user's planners, creating the default one on first use.
func (s *PlannerService) ListPlanners(ctx context.Context, userID uuid.UUID) ([]dto.PlannerResponse, error) {
	planners, err := s.ensurePlanners(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlannerResponse, 0, len(planners))
	for _, p := range planners {
		out = append(out, toPlannerResponse(p))
	}
	return out, nil
}

func (s *PlannerService) CreatePlanner(ctx context.Context, userID uuid.UUID, name string) (*dto.PlannerResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: planner name is required", ErrInvalidInput)
	}

	p := &models.Planner{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: time.Now()}
	if err := s.plannerRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create planner: %w", err)
	}

	resp := toPlannerResponse(p)
	return &resp, nil
}

func (s *PlannerService) RenamePlanner(ctx context.Context, userID, id uuid.UUID, name string) (*dto.PlannerResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: planner name is required", ErrInvalidInput)
	}

	p, err := s.ownedPlanner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.plannerRepo.Rename(ctx, userID, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename planner: %w", err)
	}

	p.Name = name
	resp := toPlannerResponse(p)
	return &resp, nil
}

// DeletePlanner removes a planner and retires its habits. The user's last
// planner cannot be removed.
func (s *PlannerService) DeletePlanner(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.ownedPlanner(ctx, userID, id); err != nil {
		return err
	}

	planners, err := s.plannerRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list planners: %w", err)
	}
	if len(planners) <= 1 {
		return ErrLastPlanner
	}

	if err := s.plannerRepo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete planner: %w", err)
	}
	s.logger.Info("Planner deleted", zap.String("planner_id", id.String()), zap.String("user_id", userID.String()))
	return nil
}

func (s *PlannerService) ListHabits(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]dto.HabitResponse, error) {
	habits, err := s.habitRepo.ListActive(ctx, userID, plannerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	out := make([]dto.HabitResponse, 0, len(habits))
	for _, h := range habits {
		out = append(out, toHabitResponse(h))
	}
	return out, nil
}

// ActiveHabits returns every active habit of the user, oldest first.
func (s *PlannerService) ActiveHabits(ctx context.Context, userID uuid.UUID) ([]*models.Habit, error) {
	habits, err := s.habitRepo.ListActive(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// CreateHabit adds a habit to the given planner, or to the default one.
func (s *PlannerService) CreateHabit(ctx context.Context, userID uuid.UUID, req *dto.CreateHabitRequest) (*dto.HabitResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: habit title is required", ErrInvalidInput)
	}

	plannerID, err := parseOptionalUUID(req.PlannerID)
	if err != nil {
		return nil, err
	}
	var planner *models.Planner
	if plannerID != nil {
		planner, err = s.ownedPlanner(ctx, userID, *plannerID)
	} else {
		planner, err = s.defaultPlanner(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	frequency := models.FrequencyDaily
	if req.Frequency != "" {
		frequency = models.HabitFrequency(req.Frequency)
	}
	target := defaultTargetDaysPerWeek
	if req.TargetDaysPerWeek != nil {
		target = *req.TargetDaysPerWeek
	}

	now := time.Now()
	h := &models.Habit{
		ID:                uuid.New(),
		UserID:            userID,
		PlannerID:         planner.ID,
		Title:             title,
		Icon:              nonEmpty(req.Icon),
		Color:             nonEmpty(req.Color),
		Frequency:         frequency,
		TargetDaysPerWeek: &target,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.habitRepo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	resp := toHabitResponse(h)
	return &resp, nil
}

// DeleteHabit retires the habit; its history stays.
func (s *PlannerService) DeleteHabit(ctx context.Context, userID, id uuid.UUID) error {
	return s.habitRepo.Deactivate(ctx, userID, id)
}

func (s *PlannerService) Logs(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.HabitLog, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidInput)
	}
	logs, err := s.logRepo.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load habit logs: %w", err)
	}
	return logs, nil
}

func (s *PlannerService) LogsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]dto.HabitLogResponse, error) {
	logs, err := s.Logs(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HabitLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toHabitLogResponse(l))
	}
	return out, nil
}

// Toggle flips the completion of habitID on date. The habit must belong to
// the user and still be active.
func (s *PlannerService) Toggle(ctx context.Context, userID, habitID uuid.UUID, date string) (*dto.ToggleHabitResponse, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID || !habit.IsActive {
		return nil, ErrNotFound
	}

	log, err := s.logRepo.Toggle(ctx, userID, habitID, day)
	if err != nil {
		s.logger.Error("Habit toggle failed",
			zap.String("habit_id", habitID.String()),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to toggle habit: %w", err)
	}

	completed := log != nil
	s.metrics.HabitToggle(completed)
	s.publisher.Publish(ctx, events.New(events.HabitToggled, userID, map[string]any{
		"habit_id":  habitID.String(),
		"date":      day.Format(models.DateLayout),
		"completed": completed,
	}))

	resp := &dto.ToggleHabitResponse{Completed: completed}
	if log != nil {
		l := toHabitLogResponse(log)
		resp.Log = &l
	}
	return resp, nil
}

// Grid builds the habit by day completion matrix of a planner for month.
func (s *PlannerService) Grid(ctx context.Context, userID, plannerID uuid.UUID, month string) (*dto.PlannerGridResponse, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.ownedPlanner(ctx, userID, plannerID); err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListActive(ctx, userID, &plannerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	logs, err := s.logRepo.ListRange(ctx, userID, m.Start(), m.End())
	if err != nil {
		return nil, fmt.Errorf("failed to load habit logs: %w", err)
	}

	days := m.Days()
	done := make(map[uuid.UUID]map[int]bool, len(habits))
	for _, l := range logs {
		if !l.IsCompleted || !m.Contains(l.LoggedDate) {
			continue
		}
		if done[l.HabitID] == nil {
			done[l.HabitID] = make(map[int]bool)
		}
		done[l.HabitID][l.LoggedDate.Day()] = true
	}

	resp := &dto.PlannerGridResponse{
		PlannerID: plannerID.String(),
		Month:     m.String(),
		Days:      make([]string, 0, len(days)),
		Rows:      make([]dto.HabitGridRow, 0, len(habits)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, d.Format(models.DateLayout))
	}
	for _, h := range habits {
		row := dto.HabitGridRow{Habit: toHabitResponse(h), Completed: make([]bool, len(days))}
		for i, d := range days {
			if done[h.ID][d.Day()] {
				row.Completed[i] = true
				row.Count++
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

func (s *PlannerService) ensurePlanners(ctx context.Context, userID uuid.UUID) ([]*models.Planner, error) {
	planners, err := s.plannerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planners: %w", err)
	}
	if len(planners) > 0 {
		return planners, nil
	}

	p := &models.Planner{ID: uuid.New(), UserID: userID, Name: models.DefaultPlannerName, CreatedAt: time.Now()}
	if err := s.plannerRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create default planner: %w", err)
	}
	s.logger.Info("Default planner created", zap.String("user_id", userID.String()))
	return []*models.Planner{p}, nil
}

func (s *PlannerService) defaultPlanner(ctx context.Context, userID uuid.UUID) (*models.Planner, error) {
	planners, err := s.ensurePlanners(ctx, userID)
	if err != nil {
		return nil, err
	}
	return planners[0], nil
}

func (s *PlannerService) ownedPlanner(ctx context.Context, userID, id uuid.UUID) (*models.Planner, error) {
	p, err := s.plannerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}
