package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func strPtr(s string) *string { return &s }

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, zap.NewNop())

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(id, "ana@example.com", "hash", strPtr("Ana"), nil, "EUR", "pt-PT", now, now))

	user, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.DisplayName())
	assert.Nil(t, user.AvatarURL)
}

func TestCategoryRepository_SeedDefaults(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock, zap.NewNop())

	cats := []*models.Category{
		{ID: uuid.New(), Name: "Casa", Type: models.CategoryTypeExpense, CreatedAt: time.Now()},
		{ID: uuid.New(), Name: "Salário", Type: models.CategoryTypeIncome, CreatedAt: time.Now()},
	}
	mock.ExpectExec(`INSERT INTO categories (.+) ON CONFLICT \(name, type\) WHERE is_default DO NOTHING`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.SeedDefaults(context.Background(), cats)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCategoryRepository_DeleteDefaultIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock, zap.NewNop())

	mock.ExpectExec(`DELETE FROM categories WHERE`).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseRepository_ListJoinsCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewExpenseRepository(mock, zap.NewNop())

	userID := uuid.New()
	catID := uuid.New()
	day := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	expenseType := models.CategoryTypeExpense
	isDefault := true

	cols := append(append([]string{}, expenseColumns...), "name", "icon", "color", "type", "is_default")
	rows := pgxmock.NewRows(cols).
		AddRow(uuid.New(), userID, nil, strPtr("Pingo Doce"), day, decimal.RequireFromString("23.40"), "EUR", &catID,
			nil, nil, false, nil, nil, json.RawMessage(`[]`), day, day,
			strPtr("Alimentação"), strPtr("🍔"), strPtr("#D4A574"), &expenseType, &isDefault).
		AddRow(uuid.New(), userID, nil, nil, day, decimal.RequireFromString("5"), "EUR", nil,
			nil, nil, false, nil, nil, json.RawMessage(`[]`), day, day,
			nil, nil, nil, nil, nil)

	start := day
	mock.ExpectQuery(`SELECT (.+) FROM expenses e LEFT JOIN categories c ON c.id = e.category_id WHERE e.user_id = \$1 AND e.date >= \$2 ORDER BY e.date DESC, e.created_at DESC`).
		WithArgs(userID, start).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), userID, models.ExpenseFilter{Start: &start})
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NotNil(t, list[0].Category)
	assert.Equal(t, "Alimentação", list[0].Category.Name)
	assert.True(t, list[0].Category.IsDefault)
	assert.False(t, list[0].IsIncome())
	assert.True(t, decimal.RequireFromString("23.4").Equal(list[0].Amount))

	assert.Nil(t, list[1].Category)
}

func TestExpenseRepository_UpdateOtherUsersRecord(t *testing.T) {
	mock := newMock(t)
	repo := NewExpenseRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE expenses SET (.+) WHERE id = \$\d+ AND user_id = \$\d+`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &models.Expense{ID: uuid.New(), UserID: uuid.New(), Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceiptRepository_ClaimIsConditional(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec(`UPDATE receipts SET status = \$1 WHERE id = \$2 AND status <> \$3`).
		WithArgs(models.ReceiptStatusCommitted, id, models.ReceiptStatusCommitted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE receipts SET status = \$1 WHERE id = \$2 AND status <> \$3`).
		WithArgs(models.ReceiptStatusCommitted, id, models.ReceiptStatusCommitted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Claim(context.Background(), id))
	assert.ErrorIs(t, repo.Claim(context.Background(), id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitLogRepository_ToggleInserts(t *testing.T) {
	mock := newMock(t)
	repo := NewHabitLogRepository(mock, zap.NewNop())

	userID, habitID := uuid.New(), uuid.New()
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM habit_logs WHERE (.+) FOR UPDATE`).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO habit_logs`).
		WithArgs(pgxmock.AnyArg(), habitID, userID, day, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	log, err := repo.Toggle(context.Background(), userID, habitID, day)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, habitID, log.HabitID)
	assert.Equal(t, day, log.LoggedDate)
	assert.True(t, log.IsCompleted)
}

func TestHabitLogRepository_ToggleDeletesExisting(t *testing.T) {
	mock := newMock(t)
	repo := NewHabitLogRepository(mock, zap.NewNop())

	logID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM habit_logs WHERE (.+) FOR UPDATE`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(logID))
	mock.ExpectExec(`DELETE FROM habit_logs WHERE id = \$1`).
		WithArgs(logID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	log, err := repo.Toggle(context.Background(), uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, log)
}

func TestHabitLogRepository_ToggleRollsBackOnFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewHabitLogRepository(mock, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM habit_logs`).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO habit_logs`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), uuid.New(), uuid.New(), time.Now())
	assert.Error(t, err)
}

func TestPlannerRepository_DeleteDeactivatesHabits(t *testing.T) {
	var statements []string
	matcher := pgxmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		statements = append(statements, actualSQL)
		return pgxmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
	})
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPlannerRepository(mock, zap.NewNop())

	userID, plannerID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE habits SET is_active = \$1, updated_at = \$2 WHERE`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`UPDATE planners SET deleted_at = \$1 WHERE deleted_at IS NULL AND id = \$2 AND user_id = \$3`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), userID, plannerID))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Planner rows are archived, never removed, so nothing cascades into
	// habits, habit_logs or goals.
	require.NotEmpty(t, statements)
	for _, stmt := range statements {
		assert.NotContains(t, strings.ToUpper(stmt), "DELETE")
	}
}

func TestPlannerRepository_DeleteMissingRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewPlannerRepository(mock, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE habits`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`UPDATE planners SET deleted_at`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlannerRepository_ListSkipsArchived(t *testing.T) {
	mock := newMock(t)
	repo := NewPlannerRepository(mock, zap.NewNop())

	userID := uuid.New()
	mock.ExpectQuery(`SELECT id, user_id, name, created_at FROM planners WHERE deleted_at IS NULL AND user_id = \$1 ORDER BY created_at ASC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "created_at"}).
			AddRow(uuid.New(), userID, "Principal", time.Now()))

	planners, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, planners, 1)
	assert.Equal(t, "Principal", planners[0].Name)
}

func TestHabitRepository_ListActiveByPlanner(t *testing.T) {
	mock := newMock(t)
	repo := NewHabitRepository(mock, zap.NewNop())

	userID, plannerID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM habits WHERE is_active = \$1 AND user_id = \$2 AND planner_id = \$3 ORDER BY created_at ASC`).
		WithArgs(true, userID, plannerID).
		WillReturnRows(pgxmock.NewRows(habitColumns).
			AddRow(uuid.New(), userID, plannerID, "Ler 20 minutos", strPtr("📚"), nil, models.FrequencyDaily, nil, true, now, now))

	habits, err := repo.ListActive(context.Background(), userID, &plannerID)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Ler 20 minutos", habits[0].Title)
	assert.Nil(t, habits[0].TargetDaysPerWeek)
}

func TestGoalRepository_ListByMonth(t *testing.T) {
	mock := newMock(t)
	repo := NewGoalRepository(mock, zap.NewNop())

	userID, habitID := uuid.New(), uuid.New()
	now := time.Now()
	cols := append(append([]string{}, goalColumns...), "c_name", "c_icon", "h_title", "h_icon")
	mock.ExpectQuery(`SELECT (.+) FROM goals g LEFT JOIN categories c (.+) LEFT JOIN habits h (.+) WHERE g.month = \$1 AND g.user_id = \$2`).
		WithArgs("2026-10", userID).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(uuid.New(), userID, "Treinar 12 vezes", models.GoalTypeHabitTarget, decimal.NewFromInt(12), nil, &habitID, "2026-10", now, now,
				nil, nil, strPtr("Treino"), strPtr("💪")))

	goals, err := repo.ListByMonth(context.Background(), userID, "2026-10")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, models.GoalTypeHabitTarget, goals[0].Type)
	require.NotNil(t, goals[0].HabitTitle)
	assert.Equal(t, "Treino", *goals[0].HabitTitle)
	assert.Nil(t, goals[0].CategoryName)
}

func TestKnowledgeRepository_CreateSkipsDuplicateTitle(t *testing.T) {
	mock := newMock(t)
	repo := NewKnowledgeRepository(mock, zap.NewNop())

	mock.ExpectExec(`INSERT INTO coach_tips (.+) ON CONFLICT \(title\) DO NOTHING`).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := repo.Create(context.Background(), &models.CoachTip{ID: uuid.New(), Type: models.TipTypeSavings, Title: "Regra 50/30/20", Content: "..."})
	require.NoError(t, err)
	assert.False(t, created)
}
