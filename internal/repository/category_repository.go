package repository

import (
	"context"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var categoryColumns = []string{"id", "user_id", "name", "icon", "color", "type", "is_default", "created_at"}

type CategoryRepository struct {
	db     DB
	logger *zap.Logger
}

func NewCategoryRepository(db DB, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(c.ID, c.UserID, c.Name, c.Icon, c.Color, c.Type, c.IsDefault, c.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SeedDefaults inserts shared categories, skipping the ones already present.
// Returns the number of rows inserted.
func (r *CategoryRepository) SeedDefaults(ctx context.Context, categories []*models.Category) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}

	builder := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Suffix("ON CONFLICT (name, type) WHERE is_default DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, c := range categories {
		builder = builder.Values(c.ID, nil, c.Name, c.Icon, c.Color, c.Type, true, c.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListForUser returns the user's own categories plus the shared defaults.
func (r *CategoryRepository) ListForUser(ctx context.Context, userID uuid.UUID, categoryType *models.CategoryType) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Or{
			squirrel.Eq{"user_id": userID},
			squirrel.Eq{"is_default": true},
		}).
		OrderBy("is_default DESC", "name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if categoryType != nil {
		query = query.Where(squirrel.Eq{"type": *categoryType})
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

	var categories []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCategory(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Delete removes a user-owned category. Shared defaults never match.
func (r *CategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := squirrel.Delete("categories").
		Where(squirrel.Eq{"id": id, "user_id": userID, "is_default": false}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &c.Type, &c.IsDefault, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
