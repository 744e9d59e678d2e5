package handlers

import (
	"context"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"
	"pocket-coach/internal/service"

	"github.com/google/uuid"
)

// The handlers depend on these narrow views of the service layer.

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID, categoryType string) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ExpenseService interface {
	List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]dto.ExpenseResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	StatsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.ExpenseStatsResponse, error)
}

type CalendarService interface {
	Month(ctx context.Context, userID uuid.UUID, month string) (*dto.CalendarMonthResponse, error)
	Day(ctx context.Context, userID uuid.UUID, date string) (*dto.CalendarDayResponse, error)
}

type PlannerService interface {
	ListPlanners(ctx context.Context, userID uuid.UUID) ([]dto.PlannerResponse, error)
	CreatePlanner(ctx context.Context, userID uuid.UUID, name string) (*dto.PlannerResponse, error)
	RenamePlanner(ctx context.Context, userID, id uuid.UUID, name string) (*dto.PlannerResponse, error)
	DeletePlanner(ctx context.Context, userID, id uuid.UUID) error
	Grid(ctx context.Context, userID, plannerID uuid.UUID, month string) (*dto.PlannerGridResponse, error)
	ListHabits(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]dto.HabitResponse, error)
	CreateHabit(ctx context.Context, userID uuid.UUID, req *dto.CreateHabitRequest) (*dto.HabitResponse, error)
	DeleteHabit(ctx context.Context, userID, id uuid.UUID) error
	LogsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]dto.HabitLogResponse, error)
	Toggle(ctx context.Context, userID, habitID uuid.UUID, date string) (*dto.ToggleHabitResponse, error)
}

type GoalService interface {
	List(ctx context.Context, userID uuid.UUID, month string) ([]dto.GoalResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateGoalRequest) (*dto.GoalResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Progress(ctx context.Context, userID uuid.UUID, month string) ([]dto.GoalProgressResponse, error)
}

type ReceiptService interface {
	Scan(ctx context.Context, userID uuid.UUID, data []byte, fileName string) (*dto.ReceiptScanResponse, error)
	Commit(ctx context.Context, userID, receiptID uuid.UUID, req *dto.CommitReceiptRequest) (*dto.ExpenseResponse, error)
}

type CoachService interface {
	FinancialsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.FinancialInsightsResponse, error)
	HabitsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.HabitInsightsResponse, error)
	Advice(ctx context.Context, userID uuid.UUID, now time.Time, req *dto.AdviceRequest) (*dto.AdviceResponse, error)
	Reply(ctx context.Context, userID uuid.UUID, message string, now time.Time) (*dto.ChatResponse, error)
}

type ReportService interface {
	Monthly(ctx context.Context, userID uuid.UUID, month, chart, format string) (*service.Report, error)
}
