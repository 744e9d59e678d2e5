package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var habitLogColumns = []string{"id", "habit_id", "user_id", "logged_date", "is_completed", "notes", "created_at"}

type HabitLogRepository struct {
	db     DB
	logger *zap.Logger
}

func NewHabitLogRepository(db DB, logger *zap.Logger) *HabitLogRepository {
	return &HabitLogRepository{
		db:     db,
		logger: logger,
	}
}

// ListRange returns the user's logs with start <= logged_date <= end.
func (r *HabitLogRepository) ListRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.HabitLog, error) {
	query := squirrel.Select(habitLogColumns...).
		From("habit_logs").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"logged_date": start}).
		Where(squirrel.LtOrEq{"logged_date": end}).
		OrderBy("logged_date ASC").
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

	var logs []*models.HabitLog
	for rows.Next() {
		var l models.HabitLog
		if err := rows.Scan(&l.ID, &l.HabitID, &l.UserID, &l.LoggedDate, &l.IsCompleted, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}

// Toggle flips completion of a habit on a day. An existing log is removed,
// a missing one is inserted. The row lock and the (habit_id, logged_date)
// unique key keep concurrent toggles from producing two logs for one day.
// It returns the inserted log, or nil when the day was unchecked.
func (r *HabitLogRepository) Toggle(ctx context.Context, userID, habitID uuid.UUID, day time.Time) (_ *models.HabitLog, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	sel := squirrel.Select("id").
		From("habit_logs").
		Where(squirrel.Eq{"habit_id": habitID, "user_id": userID, "logged_date": day}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	var existingID uuid.UUID
	err = tx.QueryRow(ctx, sql, args...).Scan(&existingID)
	switch {
	case err == nil:
		del := squirrel.Delete("habit_logs").
			Where(squirrel.Eq{"id": existingID}).
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err = del.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("delete log: %w", err)
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil

	case errors.Is(err, pgx.ErrNoRows):
		log := &models.HabitLog{
			ID:          uuid.New(),
			HabitID:     habitID,
			UserID:      userID,
			LoggedDate:  day,
			IsCompleted: true,
			CreatedAt:   time.Now(),
		}
		ins := squirrel.Insert("habit_logs").
			Columns(habitLogColumns...).
			Values(log.ID, log.HabitID, log.UserID, log.LoggedDate, log.IsCompleted, log.Notes, log.CreatedAt).
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err = ins.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("insert log: %w", err)
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return log, nil

	default:
		return nil, fmt.Errorf("lookup log: %w", err)
	}
}
