package repository

import (
	"context"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var goalColumns = []string{
	"id", "user_id", "title", "type", "target_value", "category_id", "habit_id", "month",
	"created_at", "updated_at",
}

type GoalRepository struct {
	db     DB
	logger *zap.Logger
}

func NewGoalRepository(db DB, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GoalRepository) Create(ctx context.Context, g *models.Goal) error {
	query := squirrel.Insert("goals").
		Columns(goalColumns...).
		Values(g.ID, g.UserID, g.Title, g.Type, g.TargetValue, g.CategoryID, g.HabitID, g.Month,
			g.CreatedAt, g.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByMonth returns the user's goals for month with their category and habit
// display fields joined in.
func (r *GoalRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*models.Goal, error) {
	cols := make([]string, 0, len(goalColumns)+4)
	for _, c := range goalColumns {
		cols = append(cols, "g."+c)
	}
	cols = append(cols, "c.name", "c.icon", "h.title", "h.icon")

	query := squirrel.Select(cols...).
		From("goals g").
		LeftJoin("categories c ON c.id = g.category_id").
		LeftJoin("habits h ON h.id = g.habit_id").
		Where(squirrel.Eq{"g.user_id": userID, "g.month": month}).
		OrderBy("g.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

func (r *GoalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := squirrel.Delete("goals").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func scanGoal(row pgx.Row) (*models.Goal, error) {
	var g models.Goal
	err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Type, &g.TargetValue, &g.CategoryID, &g.HabitID, &g.Month,
		&g.CreatedAt, &g.UpdatedAt,
		&g.CategoryName, &g.CategoryIcon, &g.HabitTitle, &g.HabitIcon,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
