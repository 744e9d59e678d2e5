package service

import (
	"context"
	"time"

	"pocket-coach/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	ListForUser(ctx context.Context, userID uuid.UUID, categoryType *models.CategoryType) ([]*models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *models.Expense) error
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error)
}

type ReceiptRepository interface {
	Create(ctx context.Context, rc *models.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	UpdateExtraction(ctx context.Context, id uuid.UUID, status models.ReceiptStatus, extraction []byte, errMsg *string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error
	Claim(ctx context.Context, id uuid.UUID) error
}

type PlannerRepository interface {
	Create(ctx context.Context, p *models.Planner) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Planner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Planner, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type HabitRepository interface {
	Create(ctx context.Context, h *models.Habit) error
	ListActive(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]*models.Habit, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Habit, error)
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}

type HabitLogRepository interface {
	ListRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.HabitLog, error)
	Toggle(ctx context.Context, userID, habitID uuid.UUID, day time.Time) (*models.HabitLog, error)
}

type GoalRepository interface {
	Create(ctx context.Context, g *models.Goal) error
	ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*models.Goal, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type KnowledgeRepository interface {
	Create(ctx context.Context, tip *models.CoachTip) (bool, error)
	SimpleTextSearch(ctx context.Context, terms []string, topK int, tipType *models.TipType) ([]*models.CoachTip, error)
}

// ChatModel produces free-form text completions.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ReceiptVision reads a receipt image or PDF into structured fields.
type ReceiptVision interface {
	Provider() string
	ExtractReceipt(ctx context.Context, data []byte, fileName string) (*models.ReceiptExtraction, error)
}
