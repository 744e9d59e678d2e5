package repository

import (
	"context"
	"time"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var habitColumns = []string{
	"id", "user_id", "planner_id", "title", "icon", "color", "frequency",
	"target_days_per_week", "is_active", "created_at", "updated_at",
}

type HabitRepository struct {
	db     DB
	logger *zap.Logger
}

func NewHabitRepository(db DB, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HabitRepository) Create(ctx context.Context, h *models.Habit) error {
	query := squirrel.Insert("habits").
		Columns(habitColumns...).
		Values(h.ID, h.UserID, h.PlannerID, h.Title, h.Icon, h.Color, h.Frequency,
			h.TargetDaysPerWeek, h.IsActive, h.CreatedAt, h.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListActive returns active habits oldest first, optionally for one planner.
func (r *HabitRepository) ListActive(ctx context.Context, userID uuid.UUID, plannerID *uuid.UUID) ([]*models.Habit, error) {
	query := squirrel.Select(habitColumns...).
		From("habits").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if plannerID != nil {
		query = query.Where(squirrel.Eq{"planner_id": *plannerID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *HabitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Habit, error) {
	query := squirrel.Select(habitColumns...).
		From("habits").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	h, err := scanHabit(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

// Deactivate soft-deletes a habit; its logs stay for history.
func (r *HabitRepository) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	query := squirrel.Update("habits").
		Set("is_active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "user_id": userID, "is_active": true}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func scanHabit(row pgx.Row) (*models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.PlannerID, &h.Title, &h.Icon, &h.Color, &h.Frequency,
		&h.TargetDaysPerWeek, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
