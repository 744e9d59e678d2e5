package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"
	"pocket-coach/internal/service"
	"pocket-coach/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withUser stands in for AuthMiddleware.
func withUser(id uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, id)
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*dto.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*dto.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, token string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, token)
	r, _ := args.Get(0).(*dto.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*dto.UserResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*dto.UserResponse)
	return r, args.Error(1)
}

type mockExpenseService struct{ mock.Mock }

func (m *mockExpenseService) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]dto.ExpenseResponse, error) {
	args := m.Called(ctx, userID, filter)
	r, _ := args.Get(0).([]dto.ExpenseResponse)
	return r, args.Error(1)
}

func (m *mockExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*dto.ExpenseResponse)
	return r, args.Error(1)
}

func (m *mockExpenseService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	args := m.Called(ctx, userID, id, req)
	r, _ := args.Get(0).(*dto.ExpenseResponse)
	return r, args.Error(1)
}

func (m *mockExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockExpenseService) StatsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.ExpenseStatsResponse, error) {
	args := m.Called(ctx, userID, start, end)
	r, _ := args.Get(0).(*dto.ExpenseStatsResponse)
	return r, args.Error(1)
}

type mockPlannerService struct{ mock.Mock }

func (m *mockPlannerService) ListPlanners(ctx context.Context, userID uuid.UUID) ([]dto.PlannerResponse, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]dto.PlannerResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) CreatePlanner(ctx context.Context, userID uuid.UUID, name string) (*dto.PlannerResponse, error) {
	args := m.Called(ctx, userID, name)
	r, _ := args.Get(0).(*dto.PlannerResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) RenamePlanner(ctx context.Context, userID, id uuid.UUID, name string) (*dto.PlannerResponse, error) {
	args := m.Called(ctx, userID, id, name)
	r, _ := args.Get(0).(*dto.PlannerResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) DeletePlanner(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockPlannerService) Grid(ctx context.Context, userID, plannerID uuid.UUID, month string) (*dto.PlannerGridResponse, error) {
	args := m.Called(ctx, userID, plannerID, month)
	r, _ := args.Get(0).(*dto.PlannerGridResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) ListHabits(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]dto.HabitResponse, error) {
	args := m.Called(ctx, userID, plannerID)
	r, _ := args.Get(0).([]dto.HabitResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) CreateHabit(ctx context.Context, userID uuid.UUID, req *dto.CreateHabitRequest) (*dto.HabitResponse, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*dto.HabitResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) DeleteHabit(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockPlannerService) LogsResponse(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]dto.HabitLogResponse, error) {
	args := m.Called(ctx, userID, start, end)
	r, _ := args.Get(0).([]dto.HabitLogResponse)
	return r, args.Error(1)
}

func (m *mockPlannerService) Toggle(ctx context.Context, userID, habitID uuid.UUID, date string) (*dto.ToggleHabitResponse, error) {
	args := m.Called(ctx, userID, habitID, date)
	r, _ := args.Get(0).(*dto.ToggleHabitResponse)
	return r, args.Error(1)
}

type mockReceiptService struct{ mock.Mock }

func (m *mockReceiptService) Scan(ctx context.Context, userID uuid.UUID, data []byte, fileName string) (*dto.ReceiptScanResponse, error) {
	args := m.Called(ctx, userID, data, fileName)
	r, _ := args.Get(0).(*dto.ReceiptScanResponse)
	return r, args.Error(1)
}

func (m *mockReceiptService) Commit(ctx context.Context, userID, receiptID uuid.UUID, req *dto.CommitReceiptRequest) (*dto.ExpenseResponse, error) {
	args := m.Called(ctx, userID, receiptID, req)
	r, _ := args.Get(0).(*dto.ExpenseResponse)
	return r, args.Error(1)
}

type mockCoachService struct{ mock.Mock }

func (m *mockCoachService) FinancialsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.FinancialInsightsResponse, error) {
	args := m.Called(ctx, userID, now)
	r, _ := args.Get(0).(*dto.FinancialInsightsResponse)
	return r, args.Error(1)
}

func (m *mockCoachService) HabitsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.HabitInsightsResponse, error) {
	args := m.Called(ctx, userID, now)
	r, _ := args.Get(0).(*dto.HabitInsightsResponse)
	return r, args.Error(1)
}

func (m *mockCoachService) Advice(ctx context.Context, userID uuid.UUID, now time.Time, req *dto.AdviceRequest) (*dto.AdviceResponse, error) {
	args := m.Called(ctx, userID, now, req)
	r, _ := args.Get(0).(*dto.AdviceResponse)
	return r, args.Error(1)
}

func (m *mockCoachService) Reply(ctx context.Context, userID uuid.UUID, message string, now time.Time) (*dto.ChatResponse, error) {
	args := m.Called(ctx, userID, message, now)
	r, _ := args.Get(0).(*dto.ChatResponse)
	return r, args.Error(1)
}

type mockReportService struct{ mock.Mock }

func (m *mockReportService) Monthly(ctx context.Context, userID uuid.UUID, month, chart, format string) (*service.Report, error) {
	args := m.Called(ctx, userID, month, chart, format)
	r, _ := args.Get(0).(*service.Report)
	return r, args.Error(1)
}
