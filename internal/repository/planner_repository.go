package repository

import (
	"context"
	"fmt"
	"time"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PlannerRepository struct {
	db     DB
	logger *zap.Logger
}

func NewPlannerRepository(db DB, logger *zap.Logger) *PlannerRepository {
	return &PlannerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PlannerRepository) Create(ctx context.Context, p *models.Planner) error {
	query := squirrel.Insert("planners").
		Columns("id", "user_id", "name", "created_at").
		Values(p.ID, p.UserID, p.Name, p.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PlannerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Planner, error) {
	query := squirrel.Select("id", "user_id", "name", "created_at").
		From("planners").
		Where(squirrel.Eq{"user_id": userID, "deleted_at": nil}).
		OrderBy("created_at ASC").
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

	var planners []*models.Planner
	for rows.Next() {
		var p models.Planner
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		planners = append(planners, &p)
	}

	return planners, rows.Err()
}

func (r *PlannerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Planner, error) {
	query := squirrel.Select("id", "user_id", "name", "created_at").
		From("planners").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Planner
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PlannerRepository) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	query := squirrel.Update("planners").
		Set("name", name).
		Where(squirrel.Eq{"id": id, "user_id": userID, "deleted_at": nil}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

// Delete archives the planner and deactivates its habits in one transaction.
// Rows are kept so habit logs and habit goals survive.
func (r *PlannerRepository) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now()
	deactivate := squirrel.Update("habits").
		Set("is_active", false).
		Set("updated_at", now).
		Where(squirrel.Eq{"planner_id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := deactivate.ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("deactivate habits: %w", err)
	}

	archive := squirrel.Update("planners").
		Set("deleted_at", now).
		Where(squirrel.Eq{"id": id, "user_id": userID, "deleted_at": nil}).
		PlaceholderFormat(squirrel.Dollar)
	if err = execAffecting(ctx, tx, archive); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
