package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pocket-coach/internal/events"
	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) ListForUser(ctx context.Context, userID uuid.UUID, categoryType *models.CategoryType) ([]*models.Category, error) {
	args := m.Called(ctx, userID, categoryType)
	c, _ := args.Get(0).([]*models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockExpenseRepo struct{ mock.Mock }

func (m *mockExpenseRepo) Create(ctx context.Context, e *models.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockExpenseRepo) Update(ctx context.Context, e *models.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockExpenseRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*models.Expense)
	return e, args.Error(1)
}

func (m *mockExpenseRepo) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error) {
	args := m.Called(ctx, userID, filter)
	e, _ := args.Get(0).([]*models.Expense)
	return e, args.Error(1)
}

type mockReceiptRepo struct{ mock.Mock }

func (m *mockReceiptRepo) Create(ctx context.Context, rc *models.Receipt) error {
	return m.Called(ctx, rc).Error(0)
}

func (m *mockReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(*models.Receipt)
	return rc, args.Error(1)
}

func (m *mockReceiptRepo) UpdateExtraction(ctx context.Context, id uuid.UUID, status models.ReceiptStatus, extraction []byte, errMsg *string) error {
	return m.Called(ctx, id, status, extraction, errMsg).Error(0)
}

func (m *mockReceiptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockReceiptRepo) Claim(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockPlannerRepo struct{ mock.Mock }

func (m *mockPlannerRepo) Create(ctx context.Context, p *models.Planner) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlannerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Planner, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).([]*models.Planner)
	return p, args.Error(1)
}

func (m *mockPlannerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Planner, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Planner)
	return p, args.Error(1)
}

func (m *mockPlannerRepo) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	return m.Called(ctx, userID, id, name).Error(0)
}

func (m *mockPlannerRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockHabitRepo struct{ mock.Mock }

func (m *mockHabitRepo) Create(ctx context.Context, h *models.Habit) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHabitRepo) ListActive(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]*models.Habit, error) {
	args := m.Called(ctx, userID, plannerID)
	h, _ := args.Get(0).([]*models.Habit)
	return h, args.Error(1)
}

func (m *mockHabitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Habit, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*models.Habit)
	return h, args.Error(1)
}

func (m *mockHabitRepo) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockHabitLogRepo struct{ mock.Mock }

func (m *mockHabitLogRepo) ListRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.HabitLog, error) {
	args := m.Called(ctx, userID, start, end)
	l, _ := args.Get(0).([]*models.HabitLog)
	return l, args.Error(1)
}

func (m *mockHabitLogRepo) Toggle(ctx context.Context, userID, habitID uuid.UUID, day time.Time) (*models.HabitLog, error) {
	args := m.Called(ctx, userID, habitID, day)
	l, _ := args.Get(0).(*models.HabitLog)
	return l, args.Error(1)
}

type mockGoalRepo struct{ mock.Mock }

func (m *mockGoalRepo) Create(ctx context.Context, g *models.Goal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *mockGoalRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*models.Goal, error) {
	args := m.Called(ctx, userID, month)
	g, _ := args.Get(0).([]*models.Goal)
	return g, args.Error(1)
}

func (m *mockGoalRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockKnowledgeRepo struct{ mock.Mock }

func (m *mockKnowledgeRepo) Create(ctx context.Context, tip *models.CoachTip) (bool, error) {
	args := m.Called(ctx, tip)
	return args.Bool(0), args.Error(1)
}

func (m *mockKnowledgeRepo) SimpleTextSearch(ctx context.Context, terms []string, topK int, tipType *models.TipType) ([]*models.CoachTip, error) {
	args := m.Called(ctx, terms, topK, tipType)
	t, _ := args.Get(0).([]*models.CoachTip)
	return t, args.Error(1)
}

type mockChat struct{ mock.Mock }

func (m *mockChat) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, prompt)
	return args.String(0), args.Error(1)
}

type mockVision struct{ mock.Mock }

func (m *mockVision) Provider() string { return "fake" }

func (m *mockVision) ExtractReceipt(ctx context.Context, data []byte, fileName string) (*models.ReceiptExtraction, error) {
	args := m.Called(ctx, data, fileName)
	x, _ := args.Get(0).(*models.ReceiptExtraction)
	return x, args.Error(1)
}

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func mustGatherCount(t *testing.T, m *metrics.Metrics, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(m.Registry(), name)
	require.NoError(t, err)
	return n
}
